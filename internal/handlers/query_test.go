package handlers

import (
	stderrors "errors"
	"net/url"
	"strings"
	"testing"

	apperrors "orders-dashboard/internal/errors"
	"orders-dashboard/internal/models"
	"orders-dashboard/internal/pipeline"
)

func TestParseQuery_Defaults(t *testing.T) {
	q, err := ParseQuery(url.Values{}, testConfig())
	if err != nil {
		t.Fatalf("ParseQuery() error = %v", err)
	}

	st := q.ServiceState()
	if st.Metric != pipeline.MetricProfit {
		t.Errorf("metric = %q, want profit", st.Metric)
	}
	if st.Year != 2022 || st.RankSize != 10 || st.TableLimit != 100 {
		t.Errorf("state = %+v", st)
	}
	if st.Selection != (models.Selection{}) {
		t.Errorf("selection = %+v, want wildcard", st.Selection)
	}
}

func TestParseQuery_Values(t *testing.T) {
	v := url.Values{
		"region":       {"West"},
		"state":        {"All"},
		"city":         {" all "},
		"metric":       {"Sales"},
		"year":         {"2023"},
		"n":            {"75"},
		"segment":      {"Consumer"},
		"category":     {"All"},
		"sub_category": {"Phones"},
		"q":            {"  tec "},
		"limit":        {"5"},
	}

	q, err := ParseQuery(v, testConfig())
	if err != nil {
		t.Fatalf("ParseQuery() error = %v", err)
	}

	st := q.ServiceState()
	if st.Selection != (models.Selection{Region: "West"}) {
		t.Errorf("selection = %+v", st.Selection)
	}
	if st.Metric != pipeline.MetricSales || st.Year != 2023 {
		t.Errorf("metric/year = %q/%d", st.Metric, st.Year)
	}
	if st.RankSize != pipeline.MaxRankSize {
		t.Errorf("rank size = %d, want clamped to %d", st.RankSize, pipeline.MaxRankSize)
	}
	want := models.TableFilter{Segment: "Consumer", SubCategory: "Phones", ProductQuery: "tec"}
	if st.Table != want {
		t.Errorf("table filter = %+v, want %+v", st.Table, want)
	}
	if st.TableLimit != 5 {
		t.Errorf("table limit = %d", st.TableLimit)
	}
}

func TestParseQuery_Errors(t *testing.T) {
	tests := []struct {
		name  string
		v     url.Values
		code  apperrors.ErrorCode
		field string
	}{
		{"non-integer year", url.Values{"year": {"twenty"}}, apperrors.CodeBadRequest, "year"},
		{"non-integer n", url.Values{"n": {"ten"}}, apperrors.CodeBadRequest, "n"},
		{"unknown metric", url.Values{"metric": {"revenue"}}, apperrors.CodeValidation, "metric"},
		{"year out of range", url.Values{"year": {"3000"}}, apperrors.CodeValidation, "year"},
		{"limit too small", url.Values{"limit": {"0"}}, apperrors.CodeValidation, "limit"},
		{"query too long", url.Values{"q": {strings.Repeat("x", 101)}}, apperrors.CodeValidation, "q"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseQuery(tt.v, testConfig())

			var appErr *apperrors.AppError
			if !stderrors.As(err, &appErr) {
				t.Fatalf("error = %v, want *AppError", err)
			}
			if appErr.Code != tt.code {
				t.Errorf("code = %s, want %s", appErr.Code, tt.code)
			}
			if appErr.Details["field"] != tt.field {
				t.Errorf("details = %v, want field %q", appErr.Details, tt.field)
			}
		})
	}
}

func TestClampRankSize(t *testing.T) {
	tests := map[int]int{-5: 1, 0: 1, 1: 1, 10: 10, 50: 50, 51: 50, 1000: 50}
	for in, want := range tests {
		if got := ClampRankSize(in); got != want {
			t.Errorf("ClampRankSize(%d) = %d, want %d", in, got, want)
		}
	}
}
