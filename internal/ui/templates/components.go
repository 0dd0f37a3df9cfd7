package templates

import (
	"context"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/a-h/templ"

	"orders-dashboard/internal/models"
)

// write renders parts in order, escaping nothing; callers escape values.
func write(w io.Writer, parts ...string) error {
	for _, p := range parts {
		if _, err := io.WriteString(w, p); err != nil {
			return err
		}
	}
	return nil
}

func esc(s string) string {
	return templ.EscapeString(s)
}

// RenderString renders c into a string for SSE patches.
func RenderString(ctx context.Context, c templ.Component) (string, error) {
	var sb strings.Builder
	if err := c.Render(ctx, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// ScopeHeader shows which geography is in view.
func ScopeHeader(scope string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return write(w,
			`<p id="scope-header"><strong>Currently viewing data for:</strong> <code>`,
			esc(scope),
			`</code></p>`)
	})
}

// FilterBar renders the cascading region, state and city selects.
func FilterBar(sel models.Selection, regions, states, cities []string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := write(w, `<div id="filter-bar" class="filter-bar">`); err != nil {
			return err
		}
		if err := selectBox(w, "region", "Select Region", sel.Region, regions); err != nil {
			return err
		}
		if err := selectBox(w, "state", "Select State", sel.State, states); err != nil {
			return err
		}
		if err := selectBox(w, "city", "Select City", sel.City, cities); err != nil {
			return err
		}
		return write(w, `</div>`)
	})
}

// TableFilters renders the dataset view selects from the values present
// under the current geography.
func TableFilters(filter models.TableFilter, opts models.TableOptions) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := write(w, `<div id="table-filters" class="controls">`); err != nil {
			return err
		}
		if err := selectBox(w, "segment", "Segment", filter.Segment, opts.Segments); err != nil {
			return err
		}
		if err := selectBox(w, "category", "Category", filter.Category, opts.Categories); err != nil {
			return err
		}
		if err := selectBox(w, "sub-category", "Sub-Category", filter.SubCategory, opts.SubCategories); err != nil {
			return err
		}
		return write(w, `</div>`)
	})
}

// selectBox binds to the signal named by bind in kebab case, so
// "sub-category" drives $subCategory.
func selectBox(w io.Writer, bind, label, selected string, options []string) error {
	if err := write(w,
		`<label>`, esc(label),
		`<select id="`, bind, `-select" data-bind:`, bind,
		` data-on:change="@get('/sse/dashboard')">`,
		option("All", selected == ""),
	); err != nil {
		return err
	}
	for _, o := range options {
		if err := write(w, option(o, o == selected)); err != nil {
			return err
		}
	}
	return write(w, `</select></label>`)
}

func option(value string, selected bool) string {
	attr := ""
	if selected {
		attr = " selected"
	}
	return `<option value="` + esc(value) + `"` + attr + `>` + esc(value) + `</option>`
}

// KPICards renders sales, profit and order totals with their change from
// the previous year.
func KPICards(cmp models.Comparison) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		year := fmt.Sprintf("FY%02d", cmp.CurrentYear%100)
		return write(w,
			`<div id="kpi-cards" class="kpi-cards">`,
			card("Total Sales ("+year+")", Money(cmp.Current.Sales), cmp.SalesChange),
			card("Total Profit ("+year+")", Money(cmp.Current.Profit), cmp.ProfitChange),
			card("Total Orders ("+year+")", Count(cmp.Current.Orders), cmp.OrdersChange),
			`</div>`)
	})
}

func card(label, value, delta string) string {
	class := "delta"
	switch {
	case strings.HasPrefix(delta, "-"):
		class += " negative"
	case delta != "N/A":
		class += " positive"
	}
	return `<div class="kpi-card"><span class="label">` + esc(label) +
		`</span><span class="value">` + esc(value) +
		`</span><span class="` + class + `">` + esc(delta) + `</span></div>`
}

// DataTable renders the dataset view rows. Extra CSV columns follow the
// fixed ones, sorted by name; a row without a column shows an empty cell.
func DataTable(rows []models.TableRow, total int) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		extra := attributeColumns(rows)

		if err := write(w,
			`<div id="data-table"><p class="table-count">Showing `, Count(len(rows)), ` of `, Count(total), ` rows</p>`,
			`<table class="modern-table"><thead><tr>`,
			`<th>Order</th><th>Product</th><th>Segment</th><th>Category</th><th>Sub-Category</th><th>Sales</th><th>Profit</th>`,
		); err != nil {
			return err
		}
		for _, col := range extra {
			if err := write(w, `<th>`, esc(col), `</th>`); err != nil {
				return err
			}
		}
		if err := write(w, `</tr></thead><tbody>`); err != nil {
			return err
		}

		for _, r := range rows {
			if err := write(w,
				`<tr><td>`, esc(r.OrderID),
				`</td><td>`, esc(r.ProductID),
				`</td><td>`, esc(r.Segment),
				`</td><td><span class="category-badge">`, esc(r.Category),
				`</span></td><td>`, esc(r.SubCategory),
				`</td><td>`, Money(r.SalePrice),
				`</td><td>`, Money(r.Profit),
				`</td>`,
			); err != nil {
				return err
			}
			for _, col := range extra {
				if err := write(w, `<td>`, esc(r.Attributes[col]), `</td>`); err != nil {
					return err
				}
			}
			if err := write(w, `</tr>`); err != nil {
				return err
			}
		}
		return write(w, `</tbody></table></div>`)
	})
}

func attributeColumns(rows []models.TableRow) []string {
	seen := make(map[string]struct{})
	for _, r := range rows {
		for k := range r.Attributes {
			seen[k] = struct{}{}
		}
	}
	return slices.Sorted(maps.Keys(seen))
}

// ProductInsights lists the ranked products behind the top and bottom
// charts as tables.
func ProductInsights(metricLabel string, year, n int, top, bottom []models.RankedEntity) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := write(w,
			`<div id="product-insights"><details><summary>Tabular product insights</summary>`,
		); err != nil {
			return err
		}
		for _, t := range []struct {
			title string
			rows  []models.RankedEntity
		}{
			{fmt.Sprintf("Top %d Products by %s - %d", n, metricLabel, year), top},
			{fmt.Sprintf("Bottom %d Products by %s - %d", n, metricLabel, year), bottom},
		} {
			if err := rankTable(w, t.title, metricLabel, t.rows); err != nil {
				return err
			}
		}
		return write(w, `</details></div>`)
	})
}

func rankTable(w io.Writer, title, metricLabel string, rows []models.RankedEntity) error {
	if err := write(w,
		`<h4>`, esc(title), `</h4><table class="modern-table"><thead><tr>`,
		`<th>#</th><th>Product</th><th>`, esc(metricLabel), `</th></tr></thead><tbody>`,
	); err != nil {
		return err
	}
	if len(rows) == 0 {
		if err := write(w, `<tr><td colspan="3">No products for this selection</td></tr>`); err != nil {
			return err
		}
	}
	for i, r := range rows {
		if err := write(w,
			`<tr><td>`, fmt.Sprint(i+1),
			`</td><td>`, esc(r.Entity),
			`</td><td>`, Money(r.Value),
			`</td></tr>`,
		); err != nil {
			return err
		}
	}
	return write(w, `</tbody></table>`)
}
