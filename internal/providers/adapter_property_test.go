package providers

import (
	"encoding/json"
	"math"
	"strconv"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/pratik-mahalle/smmpanel/internal/domain/provider"
)

func TestParseOrderStatusResponse_Properties(t *testing.T) {
	a, err := NewAdapter(newTestProvider("https://panel.example.com/api"))
	if err != nil {
		t.Fatalf("NewAdapter() error = %v", err)
	}

	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 200
	properties := gopter.NewProperties(params)

	properties.Property("responses without remains leave remains undefined", prop.ForAll(
		func(status string, startCount int64) bool {
			body, _ := json.Marshal(map[string]any{"status": status, "start_count": startCount})
			res, err := a.ParseOrderStatusResponse(body)
			if err != nil {
				return false
			}
			return res.Remains == nil && res.StartCount != nil && *res.StartCount == startCount
		},
		gen.AlphaString(),
		gen.Int64Range(0, 1<<40),
	))

	properties.Property("remains round-trips as number or numeric string", prop.ForAll(
		func(remains int64, asString bool) bool {
			var value any = remains
			if asString {
				b, _ := json.Marshal(remains)
				value = string(b)
			}
			body, _ := json.Marshal(map[string]any{"status": "processing", "remains": value})
			res, err := a.ParseOrderStatusResponse(body)
			return err == nil && res.Remains != nil && *res.Remains == remains
		},
		gen.Int64Range(0, 1<<52),
		gen.Bool(),
	))

	properties.Property("malformed counts never overwrite remains", prop.ForAll(
		func(raw string, asString bool) bool {
			value := json.RawMessage(raw)
			if asString || !json.Valid(value) {
				b, _ := json.Marshal(raw)
				value = b
			}
			body, _ := json.Marshal(map[string]any{"status": "processing", "remains": value})
			res, err := a.ParseOrderStatusResponse(body)
			return err == nil && res.Remains == nil
		},
		gen.OneGenOf(
			gen.Const("NaN"), gen.Const("Inf"), gen.Const("1e30"), gen.Const("99999999999999999999"),
			gen.Int64Range(math.MinInt64, -1).Map(func(n int64) string { return strconv.FormatInt(n, 10) }),
			gen.Int64Range(0, 1<<40).Map(func(n int64) string { return strconv.FormatInt(n, 10) + ".5" }),
		),
		gen.Bool(),
	))

	properties.Property("bodies that are not JSON objects are rejected", prop.ForAll(
		func(s string) bool {
			body, _ := json.Marshal(s)
			_, err := a.ParseOrderStatusResponse(body)
			_, isResp := err.(*ResponseError)
			return isResp
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}

func TestBuildOrderStatusRequest_Properties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("order id always reaches the configured field", prop.ForAll(
		func(field, id string) bool {
			p := newTestProvider("https://panel.example.com/api")
			p.Spec = provider.APISpec{
				BodyFormat: "json",
				Request:    provider.RequestSpec{OrderIDField: field},
				Response:   provider.ResponseSpec{Status: "status"},
			}
			a, err := NewAdapter(p)
			if err != nil {
				return false
			}
			req, err := a.BuildOrderStatusRequest(id)
			if err != nil {
				return false
			}
			var body map[string]string
			if err := json.Unmarshal(req.Body, &body); err != nil {
				return false
			}
			return body[field] == id
		},
		gen.Identifier().SuchThat(func(s string) bool { return s != "action" && s != "key" }),
		gen.NumString().SuchThat(func(s string) bool { return s != "" }),
	))

	properties.TestingRun(t)
}
