package ldap

import (
	"github.com/go-ldap/ldap/v3"
	"github.com/sirupsen/logrus"
)

// BulkOp names a bulk modification kind.
type BulkOp int

const (
	// BulkReplaceAttribute replaces all values of an attribute.
	BulkReplaceAttribute BulkOp = iota
	// BulkAddValue adds a value to an attribute.
	BulkAddValue
	// BulkDeleteAttribute removes an attribute entirely.
	BulkDeleteAttribute
	// BulkDeleteValue removes one value from an attribute.
	BulkDeleteValue
)

// BulkMod is one modification applied to every matched entry.
type BulkMod struct {
	Op    BulkOp
	Attr  string
	Value string // unused for BulkDeleteAttribute
}

// BulkError records a per-entry failure during a bulk update.
type BulkError struct {
	DN      string
	Message string
}

// BulkResult summarizes a bulk update. Failures are accumulated per DN
// rather than aborting the run.
type BulkResult struct {
	Total     int
	Succeeded int
	Failed    int
	Errors    []BulkError
}

// BulkUpdate finds entries matching filter under the session base DN and
// applies the modification list to each. The search failing is fatal;
// individual modify failures are collected in the result.
func (c *Connection) BulkUpdate(filter string, mods []BulkMod) (*BulkResult, error) {
	entries, err := c.SearchSubtree(c.BaseDN, filter, []string{"dn"})
	if err != nil {
		return nil, err
	}

	result := &BulkResult{Total: len(entries)}
	c.log.WithFields(logrus.Fields{
		"matched": result.Total,
		"filter":  filter,
	}).Info("bulk update starting")

	for _, entry := range entries {
		err := c.Modify(entry.DN, func(req *ldap.ModifyRequest) {
			applyBulkMods(req, mods)
		})
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, BulkError{DN: entry.DN, Message: err.Error()})
			c.log.WithError(err).WithField("dn", entry.DN).Debug("bulk modify failed")
			continue
		}
		result.Succeeded++
	}

	c.log.WithFields(logrus.Fields{
		"succeeded": result.Succeeded,
		"failed":    result.Failed,
		"total":     result.Total,
	}).Info("bulk update complete")
	return result, nil
}

func applyBulkMods(req *ldap.ModifyRequest, mods []BulkMod) {
	for _, m := range mods {
		switch m.Op {
		case BulkReplaceAttribute:
			req.Replace(m.Attr, []string{m.Value})
		case BulkAddValue:
			req.Add(m.Attr, []string{m.Value})
		case BulkDeleteAttribute:
			req.Delete(m.Attr, nil)
		case BulkDeleteValue:
			req.Delete(m.Attr, []string{m.Value})
		}
	}
}
