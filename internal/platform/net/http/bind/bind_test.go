package bind

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	perr "supplysync/internal/platform/errors"
)

type runReq struct {
	SupplierID int64    `json:"supplier_id" validate:"required,min=1"`
	URLs       []string `json:"urls" validate:"max=3,dive,httpurl"`
	At         string   `json:"at" validate:"omitempty,hhmm"`
}

func req(method, body string) *http.Request {
	return httptest.NewRequest(method, "/", strings.NewReader(body))
}

func TestParseJSON(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		method string
		body   string
		code   perr.ErrorCode
		ok     bool
	}{
		{"valid", http.MethodPost, `{"supplier_id":7,"urls":["https://parts.example.com/a"],"at":"02:30"}`, 0, true},
		{"empty post", http.MethodPost, ``, perr.ErrorCodeJSON, false},
		{"empty get tolerated", http.MethodGet, ``, 0, true},
		{"unknown field", http.MethodPost, `{"supplier_id":7,"nope":1}`, perr.ErrorCodeJSON, false},
		{"trailing data", http.MethodPost, `{"supplier_id":7}{}`, perr.ErrorCodeJSON, false},
		{"malformed", http.MethodPost, `{"supplier_id":`, perr.ErrorCodeJSON, false},
		{"missing required", http.MethodPost, `{"urls":[]}`, perr.ErrorCodeValidation, false},
		{"relative url", http.MethodPost, `{"supplier_id":1,"urls":["/p/1"]}`, perr.ErrorCodeValidation, false},
		{"mailto url", http.MethodPost, `{"supplier_id":1,"urls":["mailto:a@b.io"]}`, perr.ErrorCodeValidation, false},
		{"bad hour", http.MethodPost, `{"supplier_id":1,"at":"24:00"}`, perr.ErrorCodeValidation, false},
		{"one digit minute", http.MethodPost, `{"supplier_id":1,"at":"02:3"}`, perr.ErrorCodeValidation, false},
		{"too many urls", http.MethodPost, `{"supplier_id":1,"urls":["http://a.io","http://b.io","http://c.io","http://d.io"]}`, perr.ErrorCodeValidation, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseJSON[runReq](req(tc.method, tc.body))
			if tc.ok {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !perr.IsCode(err, tc.code) {
				t.Fatalf("want code %v got %v", tc.code, err)
			}
		})
	}
}

func TestParseJSON_AllowEmptyBody(t *testing.T) {
	t.Parallel()

	type opt struct {
		Notes string `json:"notes"`
	}
	got, err := ParseJSON[opt](req(http.MethodPost, ""), JSONOptions{AllowEmptyBody: true})
	if err != nil || got.Notes != "" {
		t.Fatalf("got %+v err %v", got, err)
	}
}

func TestValidationMessageUsesJSONNames(t *testing.T) {
	t.Parallel()

	err := Get().Validator.Struct(runReq{})
	field, msg := ValidationFieldAndMessage(err)
	if field != "supplier_id" {
		t.Fatalf("field=%q", field)
	}
	if !strings.Contains(msg, "supplier_id") {
		t.Fatalf("msg=%q", msg)
	}
	if f, m := ValidationFieldAndMessage(nil); f != "" || m != "" {
		t.Fatalf("nil error should be empty")
	}
}

func TestParseJSON_ValidationCarriesField(t *testing.T) {
	t.Parallel()

	_, err := ParseJSON[runReq](req(http.MethodPost, `{"supplier_id":1,"at":"2am"}`))
	e, ok := perr.As(err)
	if !ok || e.Field() != "at" {
		t.Fatalf("want field at, got %v", err)
	}
	if !strings.Contains(e.Error(), "02:30") {
		t.Fatalf("message=%q", e.Error())
	}
}
