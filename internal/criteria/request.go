// Package criteria reads search request files and turns them into compiled
// statements.
//
// A request file lists the search mode, the columns to return and the
// criteria, in YAML or CUE:
//
//	name: meetings-this-quarter
//	mode: activity
//	params:
//	  - name: activity_type_id
//	    value: {1: true}
//	  - name: activity_date_low
//	    value: "2013-01-01"
//	expect:
//	  sql_contains:
//	    - "civicrm_activity.activity_type_id IN (1)"
//
// Keys may be written in camelCase; they are normalised to snake_case.
// Keys inside a param's value are ids and are left untouched.
package criteria

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/roach88/activityquery/internal/activity"
	"github.com/roach88/activityquery/internal/search"
)

// Request is one search request.
type Request struct {
	// Name identifies the request in reports. Defaults to the file name.
	Name string `mapstructure:"name"`

	Description string `mapstructure:"description"`

	// Mode is a search mode name ("contacts", "activity", ...). Empty means
	// contacts.
	Mode string `mapstructure:"mode" validate:"omitempty,oneof=contacts contribute member event grant pledge case activity campaign mailing"`

	// Operator combines groupings: AND (default) or OR.
	Operator string `mapstructure:"operator" validate:"omitempty,oneof=AND OR"`

	// Return lists requested output columns. Activity-mode requests without
	// one get the default activity columns.
	Return []string `mapstructure:"return"`

	Params []Param `mapstructure:"params" validate:"dive"`

	// RequestID pins the query's request id, for reproducible output.
	RequestID string `mapstructure:"request_id"`

	// Expect holds assertions checked by Run.
	Expect *Expect `mapstructure:"expect"`
}

// Param is one criterion as written in a request file.
type Param struct {
	Name     string `mapstructure:"name" validate:"required"`
	Op       string `mapstructure:"op"`
	Value    any    `mapstructure:"value"`
	Grouping string `mapstructure:"grouping"`
	Wildcard bool   `mapstructure:"wildcard"`
}

// Criteria converts the params to search criteria.
func (r *Request) Criteria() ([]search.Criterion, error) {
	out := make([]search.Criterion, 0, len(r.Params))
	for i, p := range r.Params {
		v, err := toValue(p.Value)
		if err != nil {
			return nil, fmt.Errorf("param %d (%s): %w", i, p.Name, err)
		}
		out = append(out, search.Criterion{
			Name:     p.Name,
			Op:       p.Op,
			Value:    v,
			Grouping: p.Grouping,
			Wildcard: p.Wildcard,
		})
	}
	return out, nil
}

// Query builds the accumulator the request describes.
func (r *Request) Query() (*search.Query, error) {
	mode, err := search.ParseMode(r.Mode)
	if err != nil {
		return nil, err
	}
	params, err := r.Criteria()
	if err != nil {
		return nil, err
	}

	returns := r.Return
	if len(returns) == 0 {
		returns = activity.DefaultReturnProperties(mode)
	}

	opts := []search.QueryOption{
		search.WithMode(mode),
		search.WithParams(params...),
		search.WithReturnProperties(returns...),
	}
	if r.Operator != "" {
		opts = append(opts, search.WithOperator(r.Operator))
	}
	if r.RequestID != "" {
		opts = append(opts, search.WithRequestIDs(search.NewFixedGenerator(r.RequestID)))
	}
	return search.NewQuery(opts...), nil
}

// toValue converts a decoded param value. Scalars become scalar values,
// sequences become lists and mappings become checkbox sets ordered by key.
func toValue(raw any) (search.Value, error) {
	switch v := raw.(type) {
	case []any:
		vals := make([]string, 0, len(v))
		for _, item := range v {
			s, err := scalarString(item)
			if err != nil {
				return search.Value{}, err
			}
			vals = append(vals, s)
		}
		return search.List(vals...), nil

	case map[string]any:
		items := make([]search.Item, 0, len(v))
		for key, item := range v {
			s, err := scalarString(item)
			if err != nil {
				return search.Value{}, fmt.Errorf("key %s: %w", key, err)
			}
			items = append(items, search.Item{Key: key, Value: s})
		}
		return search.Checked(sortItems(items)...), nil

	case map[any]any:
		items := make([]search.Item, 0, len(v))
		for key, item := range v {
			k, err := scalarString(key)
			if err != nil {
				return search.Value{}, err
			}
			s, err := scalarString(item)
			if err != nil {
				return search.Value{}, fmt.Errorf("key %s: %w", k, err)
			}
			items = append(items, search.Item{Key: k, Value: s})
		}
		return search.Checked(sortItems(items)...), nil

	default:
		s, err := scalarString(raw)
		if err != nil {
			return search.Value{}, err
		}
		return search.Scalar(s), nil
	}
}

type numberLike interface {
	String() string
}

// scalarString renders a decoded scalar the way the form layer submits it.
func scalarString(raw any) (string, error) {
	switch v := raw.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case bool:
		if v {
			return "1", nil
		}
		return "0", nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case numberLike:
		return v.String(), nil
	default:
		return "", fmt.Errorf("unsupported value of type %T", raw)
	}
}

// sortItems orders numeric keys numerically ahead of other keys, which sort
// lexically.
func sortItems(items []search.Item) []search.Item {
	sort.SliceStable(items, func(i, j int) bool {
		a, aErr := strconv.ParseInt(strings.TrimSpace(items[i].Key), 10, 64)
		b, bErr := strconv.ParseInt(strings.TrimSpace(items[j].Key), 10, 64)
		switch {
		case aErr == nil && bErr == nil:
			return a < b
		case aErr == nil:
			return true
		case bErr == nil:
			return false
		default:
			return items[i].Key < items[j].Key
		}
	})
	return items
}
