package parser

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/adammpkins/hreq/internal/types"
)

type (
	key  = types.ObjectKey
	idx  = types.ArrayIndex
	push = types.ArrayAppend
	path = []types.PathAccessor
)

func TestParseComponent(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  types.RequestComponent
	}{
		// Query parameters
		{"query", "foo==bar", types.QueryParam{Name: "foo", Value: "bar"}},
		{"query value with equals", "foo==bar=baz==qux", types.QueryParam{Name: "foo", Value: "bar=baz==qux"}},
		{"query value with spaces", "q==hello world", types.QueryParam{Name: "q", Value: "hello world"}},
		{"query key with brackets", "foo[x==y", types.QueryParam{Name: "foo[x", Value: "y"}},

		// Headers
		{"header", "foo:bar", types.Header{Name: "foo", Value: "bar"}},
		{"header internal spaces", "foo:bar baz", types.Header{Name: "foo", Value: "bar baz"}},
		{"header surrounding spaces kept", "X-Token:  abc ", types.Header{Name: "X-Token", Value: "  abc "}},
		{"header base64 padding", "Authorization:Basic YQ==", types.Header{Name: "Authorization", Value: "Basic YQ=="}},
		{"header value ending in equals", "X-Sig:abc==", types.Header{Name: "X-Sig", Value: "abc=="}},
		{"header value with colon", "Host:localhost:8080", types.Header{Name: "Host", Value: "localhost:8080"}},
		{"header underscore", "x_api_key:k", types.Header{Name: "x_api_key", Value: "k"}},

		// Literal body fragments
		{"literal", "foo=bar", types.Literal{Path: path{key{Name: "foo"}}, Value: "bar"}},
		{"literal empty value", "foo=", types.Literal{Path: path{key{Name: "foo"}}, Value: ""}},
		{"literal value with operators", "foo=a:=b==c", types.Literal{Path: path{key{Name: "foo"}}, Value: "a:=b==c"}},
		{"literal root", "=bar", types.Literal{Path: nil, Value: "bar"}},
		{"empty query value is a literal", "foo==", types.Literal{Path: path{key{Name: "foo"}}, Value: "="}},
		{"empty query key is a root literal", "==v", types.Literal{Path: nil, Value: "=v"}},
		{"literal key with spaces", "first name=Ada", types.Literal{Path: path{key{Name: "first name"}}, Value: "Ada"}},
		{"bracket key", "foo[bar]=baz", types.Literal{Path: path{key{Name: "foo"}, key{Name: "bar"}}, Value: "baz"}},
		{"dotted key", "foo.bar=baz", types.Literal{Path: path{key{Name: "foo"}, key{Name: "bar"}}, Value: "baz"}},
		{"leading dot", ".foo=bar", types.Literal{Path: path{key{Name: "foo"}}, Value: "bar"}},
		{"bracket index", "foo[0]=bar", types.Literal{Path: path{key{Name: "foo"}, idx{Index: 0}}, Value: "bar"}},
		{"root index", "[1]=foo", types.Literal{Path: path{idx{Index: 1}}, Value: "foo"}},
		{"append", "a[f][]=g", types.Literal{Path: path{key{Name: "a"}, key{Name: "f"}, push{}}, Value: "g"}},
		{"juxtaposed index", "foo[bar]0.qux=quux", types.Literal{Path: path{key{Name: "foo"}, key{Name: "bar"}, idx{Index: 0}, key{Name: "qux"}}, Value: "quux"}},
		{"juxtaposed key", "foo[bar]baz.qux=quux", types.Literal{Path: path{key{Name: "foo"}, key{Name: "bar"}, key{Name: "baz"}, key{Name: "qux"}}, Value: "quux"}},
		{"dotted digits are a key", "foo.0=bar", types.Literal{Path: path{key{Name: "foo"}, key{Name: "0"}}, Value: "bar"}},
		{"leading digits are an index", "0[a]=b", types.Literal{Path: path{idx{Index: 0}, key{Name: "a"}}, Value: "b"}},
		{"leading index", "0=foo", types.Literal{Path: path{idx{Index: 0}}, Value: "foo"}},
		{"leading overflow is a key", "4294967296=x", types.Literal{Path: path{key{Name: "4294967296"}}, Value: "x"}},
		{"leading digits then letters", "0a=x", types.Literal{Path: path{key{Name: "0a"}}, Value: "x"}},
		{"bracket with operators", "foo[a=b]=c", types.Literal{Path: path{key{Name: "foo"}, key{Name: "a=b"}}, Value: "c"}},
		{"index overflow is a key", "[4294967296]=x", types.Literal{Path: path{key{Name: "4294967296"}}, Value: "x"}},
		{"mixed nesting", "[][foo][bar][][1][baz]=qux", types.Literal{
			Path:  path{push{}, key{Name: "foo"}, key{Name: "bar"}, push{}, idx{Index: 1}, key{Name: "baz"}},
			Value: "qux",
		}},

		// Raw body fragments
		{"raw object", `foo:={"bar":"baz"}`, types.Raw{Path: path{key{Name: "foo"}}, Value: `{"bar":"baz"}`}},
		{"raw null", "foo:=null", types.Raw{Path: path{key{Name: "foo"}}, Value: "null"}},
		{"raw number", "foo:=1", types.Raw{Path: path{key{Name: "foo"}}, Value: "1"}},
		{"raw nested path", "a[b][]:=true", types.Raw{Path: path{key{Name: "a"}, key{Name: "b"}, push{}}, Value: "true"}},
		{"raw root", ":=[1,2]", types.Raw{Path: nil, Value: "[1,2]"}},
		{"raw wins over header", "name:=value", types.Raw{Path: path{key{Name: "name"}}, Value: "value"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseComponent(tt.input)
			if err != nil {
				t.Fatalf("ParseComponent(%q) error = %v", tt.input, err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseComponent(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

func TestParseComponentInvalid(t *testing.T) {
	tests := []string{
		"foo bar:baz",
		"foo",
		"",
		"foo[bar=baz",
		"foo..bar=baz",
		"foo.=bar",
		"foo[bar]:baz",
		":value",
		"a b",
		"Accept:",
	}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			got, err := ParseComponent(input)
			if err == nil {
				t.Fatalf("ParseComponent(%q) = %#v, want error", input, got)
			}
			if got != nil {
				t.Errorf("ParseComponent(%q) returned partial component %#v", input, got)
			}
			if !errors.Is(err, ErrInvalidComponent) {
				t.Errorf("ParseComponent(%q) error = %v, want ErrInvalidComponent", input, err)
			}
			var compErr *ComponentError
			if !errors.As(err, &compErr) || compErr.Token != input {
				t.Errorf("ParseComponent(%q) error does not carry the token: %#v", input, err)
			}
			if err.Error() != "Invalid request component" {
				t.Errorf("Error() = %q", err.Error())
			}
		})
	}
}

func TestQueryParamRoundTrip(t *testing.T) {
	inputs := []string{"a==b", "key==with spaces", "k==v=w", "emoji==✓", "x===", "a b==c d"}
	for _, input := range inputs {
		c, err := ParseComponent(input)
		if err != nil {
			t.Fatalf("ParseComponent(%q) error = %v", input, err)
		}
		q, ok := c.(types.QueryParam)
		if !ok {
			t.Fatalf("ParseComponent(%q) = %T, want QueryParam", input, c)
		}
		if got := q.Name + "==" + q.Value; got != input {
			t.Errorf("round trip of %q = %q", input, got)
		}
	}
}

func TestComponentErrorHint(t *testing.T) {
	tests := []struct {
		token string
		want  string
	}{
		{"foo bar:baz", "header names may only contain letters, digits, '-' and '_'"},
		{"foo[bar=baz", "unbalanced brackets in body path"},
		{"justaword", "use name==value for query, Name:value for headers, path=value or path:=json for body"},
		{"foo..bar=baz", ""},
		{"Accept:", "header values may not be empty"},
	}
	for _, tt := range tests {
		e := &ComponentError{Token: tt.token}
		if got := e.Hint(); got != tt.want {
			t.Errorf("Hint(%q) = %q, want %q", tt.token, got, tt.want)
		}
	}
}
