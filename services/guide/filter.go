package guide

import (
	"fmt"
	"regexp"
	"strings"

	"solobuddy/models"
	"solobuddy/utils"

	"go.mongodb.org/mongo-driver/bson"
)

var (
	textOps    = []string{"$eq", "$regex"}
	setOps     = []string{"$eq", "$in", "$nin", "$all"}
	numericOps = []string{"$eq", "$ne", "$gt", "$gte", "$lt", "$lte"}
)

// filterBuilder accumulates a Mongo query and every rejected clause.
type filterBuilder struct {
	query    bson.M
	currency string
	bad      []string
}

// BuildGuideQuery turns a structured guide filter into a Mongo query. Only
// whitelisted fields and operators are accepted and vocabulary fields must
// use known values; every problem is reported in one VALIDATION error.
func BuildGuideQuery(f models.GuideFilter, currency string) (bson.M, error) {
	b := &filterBuilder{query: bson.M{}, currency: currency}

	b.text("name", "user.name", f.Name)
	b.text("country", "user.country", f.Country)
	b.vocab("location", "location", f.Location, models.Locations, true)
	b.vocab("languages", "languages", f.Languages, models.Languages, true)
	b.vocab("vehicle", "vehicle", f.Vehicle, models.VehicleTypes, true)
	b.vocab("specialties", "specialties", f.Specialties, models.SpecialtyTypes, true)
	b.vocab("favourites", "favourites.name", f.Favourites, models.Favourites, false)
	b.numeric("ratingAvg", "ratingAvg", f.RatingAvg, false)
	b.numeric("dailyRate", "pricePerDay", f.PricePerDay, true)
	if f.ExperienceYears != nil {
		b.numeric("experienceYears", "experienceYears", []models.FilterClause{*f.ExperienceYears}, false)
	}

	if len(b.bad) > 0 {
		return nil, utils.Validation("invalid search filter", b.bad...)
	}
	return b.query, nil
}

func normalizeOp(op string) string {
	op = strings.ToLower(strings.TrimSpace(op))
	if op != "" && !strings.HasPrefix(op, "$") {
		op = "$" + op
	}
	return op
}

func (b *filterBuilder) reject(key, format string, args ...interface{}) {
	b.bad = append(b.bad, key+": "+fmt.Sprintf(format, args...))
}

func (b *filterBuilder) text(field, key string, c *models.FilterClause) {
	if c == nil {
		return
	}
	op := normalizeOp(c.Operator)
	if !models.Contains(textOps, op) {
		b.reject(key, "operator %q not allowed", c.Operator)
		return
	}
	v, ok := c.Value.(string)
	if !ok || strings.TrimSpace(v) == "" {
		b.reject(key, "value must be a non-empty string")
		return
	}
	v = strings.TrimSpace(v)
	if op == "$regex" {
		// user text is matched literally
		b.query[field] = bson.M{"$regex": regexp.QuoteMeta(v), "$options": "i"}
		return
	}
	b.query[field] = v
}

func (b *filterBuilder) vocab(field, key string, c *models.FilterClause, allowed []string, lower bool) {
	if c == nil {
		return
	}
	op := normalizeOp(c.Operator)
	if !models.Contains(setOps, op) {
		b.reject(key, "operator %q not allowed", c.Operator)
		return
	}
	values, ok := stringValues(c.Value)
	if !ok || len(values) == 0 {
		b.reject(key, "value must be a string or a list of strings")
		return
	}
	clean, invalid := normalizeVocab(values, allowed, lower)
	for _, v := range invalid {
		b.reject(key, "unknown value %q", v)
	}
	if len(invalid) > 0 {
		return
	}
	if op == "$eq" {
		if len(clean) != 1 {
			b.reject(key, "$eq takes a single value")
			return
		}
		b.query[field] = clean[0]
		return
	}
	b.query[field] = bson.M{op: clean}
}

func (b *filterBuilder) numeric(field, key string, clauses []models.FilterClause, money bool) {
	if len(clauses) == 0 {
		return
	}
	cond := bson.M{}
	for _, c := range clauses {
		op := normalizeOp(c.Operator)
		if !models.Contains(numericOps, op) {
			b.reject(key, "operator %q not allowed", c.Operator)
			continue
		}
		n, ok := c.Value.(float64)
		if !ok {
			if i, isInt := c.Value.(int); isInt {
				n, ok = float64(i), true
			}
		}
		if !ok || n < 0 {
			b.reject(key, "value must be a non-negative number")
			continue
		}
		if money {
			m, err := models.FromMajor(n, b.currency)
			if err != nil {
				b.reject(key, "%v", err)
				continue
			}
			cond[op] = int64(m)
			continue
		}
		cond[op] = n
	}
	if len(cond) > 0 {
		b.query[field] = cond
	}
}

// stringValues accepts a string or a JSON array of strings.
func stringValues(v interface{}) ([]string, bool) {
	switch x := v.(type) {
	case string:
		return []string{x}, true
	case []string:
		return x, true
	case []interface{}:
		out := make([]string, 0, len(x))
		for _, e := range x {
			s, ok := e.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}
