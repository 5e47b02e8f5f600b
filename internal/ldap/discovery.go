package ldap

import (
	"github.com/sirupsen/logrus"

	"github.com/trepidity/loom-ldapbrowser/internal/schema"
)

// DiscoverSchema reads the schema subentry and parses its attributeTypes
// and objectClasses definitions into a fresh cache. Pass the DN advertised
// by the root entry's subschemaSubentry; an empty DN falls back to the
// conventional cn=Subschema.
func (c *Connection) DiscoverSchema(subschemaDN string) (*schema.Cache, error) {
	schemaDN := subschemaDN
	if schemaDN == "" {
		schemaDN = "cn=Subschema"
		c.log.Debug("no subschemaSubentry advertised, falling back to cn=Subschema")
	}

	entries, err := c.Search(schemaDN, ScopeBase, "(objectClass=*)",
		[]string{"attributeTypes", "objectClasses"})
	if err != nil {
		return nil, &SchemaError{Message: "schema search failed", Err: err}
	}
	if len(entries) == 0 {
		c.log.WithField("schema_dn", schemaDN).Warn("no schema entry returned")
		return schema.NewCache(), nil
	}

	attrs := entries[0].Attributes
	cache := c.buildSchemaCache(
		attrValues(attrs, "attributeTypes"),
		attrValues(attrs, "objectClasses"),
	)

	c.log.WithFields(logrus.Fields{
		"attribute_types": len(cache.AttributeTypes),
		"object_classes":  len(cache.ObjectClasses),
	}).Debug("schema loaded")
	return cache, nil
}

// buildSchemaCache parses raw definitions, skipping and logging malformed
// ones; one bad definition must not abort the rest of the schema.
func (c *Connection) buildSchemaCache(attributeTypes, objectClasses []string) *schema.Cache {
	cache := schema.NewCache()

	for _, def := range attributeTypes {
		at := schema.ParseAttributeType(def)
		if at == nil {
			c.log.WithField("definition", truncate(def, 80)).Warn("skipping unparsable attributeType")
			continue
		}
		cache.AddAttributeType(at)
	}
	for _, def := range objectClasses {
		oc := schema.ParseObjectClass(def)
		if oc == nil {
			c.log.WithField("definition", truncate(def, 80)).Warn("skipping unparsable objectClass")
			continue
		}
		cache.AddObjectClass(oc)
	}
	return cache
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
