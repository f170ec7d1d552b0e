package screener

import (
	"errors"
	"fmt"
	"strings"

	"github.com/brandt/screener/backend/internal/contracts"
)

// Declared request errors. The API layer maps all three to HTTP 400; a
// malformed filter is rejected outright, never silently dropped.
var (
	ErrUnknownField    = errors.New("unknown screen field")
	ErrUnknownOperator = errors.New("unknown filter operator")
	ErrBadOperand      = errors.New("filter value does not fit the operator")
)

// IsRequestError reports whether err was caused by the request itself
// rather than by the database.
func IsRequestError(err error) bool {
	return errors.Is(err, ErrUnknownField) ||
		errors.Is(err, ErrUnknownOperator) ||
		errors.Is(err, ErrBadOperand)
}

// Operator names accepted in screen filters.
const (
	OpGT       = "gt"
	OpGTE      = "gte"
	OpLT       = "lt"
	OpLTE      = "lte"
	OpEQ       = "eq"
	OpNEQ      = "neq"
	OpBetween  = "between"
	OpContains = "contains"
)

var comparisons = map[string]string{
	OpGT:  ">",
	OpGTE: ">=",
	OpLT:  "<",
	OpLTE: "<=",
	OpEQ:  "=",
	OpNEQ: "<>",
}

const snapshotSelect = `
	id, company_id, ticker, name, exchange, country, sector, industry,
	market_cap, enterprise_value, last_price, pe_ratio, forward_pe,
	price_to_sales, price_to_book, ev_to_ebitda, ev_to_revenue,
	gross_margin, operating_margin, net_margin, ebitda_margin,
	roic, roe, roa,
	revenue_growth_yoy, revenue_growth_3yr_cagr, earnings_growth_yoy,
	debt_to_equity, net_debt_to_ebitda, current_ratio,
	short_percent_float, short_ratio,
	pe_5yr_avg, ev_ebitda_5yr_avg, gross_margin_5yr_avg,
	operating_margin_5yr_avg, net_margin_5yr_avg, roic_5yr_avg, roe_5yr_avg,
	forward_pe_vs_5yr_pct, ev_ebitda_vs_5yr_pct, gross_margin_vs_5yr_pct,
	operating_margin_vs_5yr_pct, roic_vs_5yr_pct, roe_vs_5yr_pct,
	computed_at`

// screenQuery is the SQL pair one screen request compiles to. countSQL
// shares the WHERE clause and its args; selectArgs carry limit and offset
// on top of them.
type screenQuery struct {
	selectSQL  string
	countSQL   string
	args       []interface{}
	selectArgs []interface{}
}

// buildScreen compiles a normalized request into parameterized SQL over
// screener_snapshots. Column names never come from the request directly:
// every field and sort name must resolve through the catalog first, so
// only operand values reach the parameter list.
func buildScreen(req contracts.ScreenRequest) (*screenQuery, error) {
	var (
		conds []string
		args  []interface{}
	)

	for _, f := range req.Filters {
		def, ok := Fields[f.Field]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownField, f.Field)
		}

		cond, operands, err := buildCondition(f, def, len(args))
		if err != nil {
			return nil, err
		}
		conds = append(conds, cond)
		args = append(args, operands...)
	}

	where := ""
	if len(conds) > 0 {
		where = "\nWHERE " + strings.Join(conds, "\n  AND ")
	}

	if _, ok := Fields[req.SortBy]; !ok {
		return nil, fmt.Errorf("%w: sort field %q", ErrUnknownField, req.SortBy)
	}
	dir := "DESC"
	if req.SortDir == "asc" {
		dir = "ASC"
	}

	q := &screenQuery{
		countSQL: "SELECT COUNT(*) FROM screener_snapshots" + where,
		args:     args,
	}
	// NULLS LAST keeps no-data companies off the front page whichever way
	// the sort runs.
	q.selectSQL = fmt.Sprintf(
		"SELECT %s\nFROM screener_snapshots%s\nORDER BY %s %s NULLS LAST, id\nLIMIT $%d OFFSET $%d",
		snapshotSelect, where, req.SortBy, dir, len(args)+1, len(args)+2,
	)
	q.selectArgs = append(append([]interface{}{}, args...), req.Limit, req.Offset)

	return q, nil
}

// buildCondition compiles one filter. Every condition also requires the
// column to be non-null, so neq and lt never match rows the company has
// no data for.
func buildCondition(f contracts.ScreenFilter, def FieldDef, argOffset int) (string, []interface{}, error) {
	switch f.Operator {
	case OpGT, OpGTE, OpLT, OpLTE, OpEQ, OpNEQ:
		operand, err := scalarOperand(f, def)
		if err != nil {
			return "", nil, err
		}
		cond := fmt.Sprintf("(%s IS NOT NULL AND %s %s $%d)",
			f.Field, f.Field, comparisons[f.Operator], argOffset+1)
		return cond, []interface{}{operand}, nil

	case OpBetween:
		if def.Kind != KindNumber {
			return "", nil, fmt.Errorf("%w: between needs a number field, %s is a %s",
				ErrBadOperand, f.Field, def.Kind)
		}
		low, high, err := rangeOperand(f)
		if err != nil {
			return "", nil, err
		}
		cond := fmt.Sprintf("(%s IS NOT NULL AND %s BETWEEN $%d AND $%d)",
			f.Field, f.Field, argOffset+1, argOffset+2)
		return cond, []interface{}{low, high}, nil

	case OpContains:
		if def.Kind != KindString {
			return "", nil, fmt.Errorf("%w: contains needs a string field, %s is a %s",
				ErrBadOperand, f.Field, def.Kind)
		}
		s, ok := f.Value.(string)
		if !ok {
			return "", nil, fmt.Errorf("%w: %s contains needs a string value", ErrBadOperand, f.Field)
		}
		cond := fmt.Sprintf("(%s IS NOT NULL AND %s ILIKE $%d)", f.Field, f.Field, argOffset+1)
		return cond, []interface{}{"%" + s + "%"}, nil

	default:
		return "", nil, fmt.Errorf("%w: %q", ErrUnknownOperator, f.Operator)
	}
}

// scalarOperand checks a comparison operand against the field kind.
// JSON numbers arrive as float64; ints are accepted for requests built in
// code.
func scalarOperand(f contracts.ScreenFilter, def FieldDef) (interface{}, error) {
	if def.Kind == KindString {
		s, ok := f.Value.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s %s needs a string value", ErrBadOperand, f.Field, f.Operator)
		}
		return s, nil
	}

	n, ok := numberValue(f.Value)
	if !ok {
		return nil, fmt.Errorf("%w: %s %s needs a numeric value", ErrBadOperand, f.Field, f.Operator)
	}
	return n, nil
}

// rangeOperand unpacks a between value: a two-element [low, high] array.
func rangeOperand(f contracts.ScreenFilter) (float64, float64, error) {
	pair, ok := f.Value.([]interface{})
	if !ok || len(pair) != 2 {
		return 0, 0, fmt.Errorf("%w: %s between needs [low, high]", ErrBadOperand, f.Field)
	}

	low, okLow := numberValue(pair[0])
	high, okHigh := numberValue(pair[1])
	if !okLow || !okHigh {
		return 0, 0, fmt.Errorf("%w: %s between needs numeric bounds", ErrBadOperand, f.Field)
	}
	return low, high, nil
}

func numberValue(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
