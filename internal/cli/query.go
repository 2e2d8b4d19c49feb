package cli

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leonhard-s/auraxium-go/census"
)

// QueryFlags holds the per-command flags describing a query.
type QueryFlags struct {
	Terms           []string
	Show            []string
	Hide            []string
	Sort            []string
	Has             []string
	Resolve         []string
	Limit           int
	LimitPerDB      int
	Start           int
	CaseInsensitive bool
}

// Register adds the query flags to a command.
func (f *QueryFlags) Register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&f.Terms, "term", "t", nil,
		"filter term as field=value; modifier literals like '<' or '^' "+
			"may prefix the value")
	cmd.Flags().StringSliceVar(&f.Show, "show", nil,
		"only include these fields in the result")
	cmd.Flags().StringSliceVar(&f.Hide, "hide", nil,
		"exclude these fields from the result")
	cmd.Flags().StringSliceVar(&f.Sort, "sort", nil,
		"sort keys, e.g. faction_id or item_id:-1")
	cmd.Flags().StringSliceVar(&f.Has, "has", nil,
		"hide results with a null value at these fields")
	cmd.Flags().StringSliceVar(&f.Resolve, "resolve", nil,
		"resolvable names to attach to the query")
	cmd.Flags().IntVar(&f.Limit, "limit", 0,
		"number of results to return")
	cmd.Flags().IntVar(&f.LimitPerDB, "limit-per-db", 0,
		"number of results to return per database")
	cmd.Flags().IntVar(&f.Start, "start", 0,
		"number of results to skip")
	cmd.Flags().BoolVar(&f.CaseInsensitive, "ignore-case", false,
		"perform a case-insensitive look-up")
}

// Build assembles a query from the global options and query flags.
// The collection may be empty to list the namespace's collections.
func (f *QueryFlags) Build(opts *RootOptions, collection string) (*census.Query, error) {
	q := census.NewQuery(collection)
	q.Namespace(opts.Namespace).ServiceID(opts.ServiceID)
	if opts.Endpoint != "" {
		endpoint, err := url.Parse(opts.Endpoint)
		if err != nil {
			return nil, fmt.Errorf("invalid endpoint %q: %w", opts.Endpoint, err)
		}
		q.Endpoint(endpoint)
	}
	if err := q.SetLocale(opts.Locale); err != nil {
		return nil, err
	}

	// Terms are added one by one so the command line order survives;
	// Where sorts map keys and would scramble multi-term queries.
	for _, term := range f.Terms {
		field, value, found := strings.Cut(term, "=")
		if !found || field == "" {
			return nil, fmt.Errorf("invalid term %q: expected field=value", term)
		}
		q.Where(census.Terms{field: census.Str(value)})
	}

	if len(f.Show) > 0 && len(f.Hide) > 0 {
		return nil, fmt.Errorf("--show and --hide are mutually exclusive")
	}
	if len(f.Show) > 0 {
		q.Show(f.Show...)
	}
	if len(f.Hide) > 0 {
		q.Hide(f.Hide...)
	}

	if len(f.Sort) > 0 {
		keys := make([]census.SortKey, len(f.Sort))
		for i, spec := range f.Sort {
			key, err := census.ParseSortKey(spec)
			if err != nil {
				return nil, err
			}
			keys[i] = key
		}
		q.SortBy(keys...)
	}
	if len(f.Has) > 0 {
		q.Has(f.Has...)
	}
	if len(f.Resolve) > 0 {
		q.Resolve(f.Resolve...)
	}

	if f.Limit > 0 && f.LimitPerDB > 0 {
		return nil, fmt.Errorf("--limit and --limit-per-db are mutually exclusive")
	}
	if f.Limit > 0 {
		if err := q.SetLimit(f.Limit); err != nil {
			return nil, err
		}
	}
	if f.LimitPerDB > 0 {
		if err := q.SetLimitPerDB(f.LimitPerDB); err != nil {
			return nil, err
		}
	}
	if f.Start > 0 {
		if err := q.SetStart(f.Start); err != nil {
			return nil, err
		}
	}
	q.SetCase(!f.CaseInsensitive)
	return q, nil
}

func collectionArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}
