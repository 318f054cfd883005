package extractor

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photoarchiver/pkg/errors"
	"photoarchiver/pkg/logger"
	"photoarchiver/pkg/navigator"
)

type element struct {
	attrs   map[string]string
	text    string
	textErr error
}

func (e element) Attribute(name string) (string, bool, error) {
	v, ok := e.attrs[name]
	return v, ok, nil
}

func (e element) Text() (string, error) {
	return e.text, e.textErr
}

type brokenElement struct{}

func (brokenElement) Attribute(string) (string, bool, error) {
	return "", false, stderrors.New("node detached")
}

func (brokenElement) Text() (string, error) {
	return "", stderrors.New("node detached")
}

func link(href string) navigator.Element {
	return element{attrs: map[string]string{"href": href}}
}

func TestResolveAbsolute(t *testing.T) {
	tests := []struct {
		name   string
		host   string
		path   string
		scheme string
		want   string
	}{
		{"root relative", "example.test", "/p/42", "https", "https://example.test/p/42"},
		{"root", "example.test", "/", "https", "https://example.test/"},
		{"keeps query", "example.test", "/ps/1?f=r%21471", "https", "https://example.test/ps/1?f=r%21471"},
		{"host with port", "127.0.0.1:8080", "/img/1.jpg", "http", "http://127.0.0.1:8080/img/1.jpg"},
		{"default scheme", "example.test", "/a", "", "https://example.test/a"},
		{"protocol relative", "example.test", "//cdn.example.test/x.jpg", "https", "https://cdn.example.test/x.jpg"},
		{"absolute unchanged", "example.test", "https://other.test/a.jpg", "https", "https://other.test/a.jpg"},
		{"relative unchanged", "example.test", "p/42", "https", "p/42"},
		{"empty unchanged", "example.test", "", "https", ""},
		{"fragment unchanged", "example.test", "#top", "https", "#top"},
		{"no host", "", "/p/42", "https", "https:///p/42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveAbsolute(tt.host, tt.path, tt.scheme))
		})
	}
}

func TestResolveAbsoluteIsTotal(t *testing.T) {
	inputs := []string{"", "/", "//", "///", "x", " /lead", "/\x00", "%%", "mailto:a@b", "\n/"}
	for _, in := range inputs {
		assert.NotPanics(t, func() {
			out := ResolveAbsolute("example.test", in, "https")
			if len(in) == 0 || in[0] != '/' {
				assert.Equal(t, in, out)
			}
		})
	}
}

func TestExtractLinkResolvesRootRelativeHref(t *testing.T) {
	ex := New(0, "", logger.NewNopLogger())

	href, ok := ex.ExtractLink(link("/p/42"), "https://example.test/list")
	require.True(t, ok)
	assert.Equal(t, "https://example.test/p/42", href)
}

func TestExtractLinkAbsent(t *testing.T) {
	ex := New(0, "", logger.NewNopLogger())

	href, ok := ex.ExtractLink(element{}, "https://example.test/list")
	assert.False(t, ok)
	assert.Empty(t, href)

	href, ok = ex.ExtractLink(brokenElement{}, "https://example.test/list")
	assert.False(t, ok)
	assert.Empty(t, href)
}

func TestExtractLinkWithoutBase(t *testing.T) {
	ex := New(0, "", logger.NewNopLogger())

	href, ok := ex.ExtractLink(link("/p/42"), "")
	require.True(t, ok)
	assert.Equal(t, "/p/42", href)
}

func TestExtractAssetURLResolvesAgainstDetailPage(t *testing.T) {
	ex := New(0, "", logger.NewNopLogger())
	asset := element{attrs: map[string]string{"src": "/img/1.jpg"}}

	src, ok := ex.ExtractAssetURL(asset, "https://example.test/p/42")
	require.True(t, ok)
	assert.Equal(t, "https://example.test/img/1.jpg", src)
}

func TestExtractAssetURLMissingIsLogged(t *testing.T) {
	log := logger.NewTestLogger()
	ex := New(0, "", log)

	src, ok := ex.ExtractAssetURL(element{attrs: map[string]string{"alt": "x"}}, "https://example.test/p/42")
	assert.False(t, ok)
	assert.Empty(t, src)

	warnings := log.GetMessagesByLevel("WARN")
	require.Len(t, warnings, 1)
	assert.True(t, errors.Is(warnings[0].Error, errors.ErrorTypeExtraction))
	assert.Equal(t, "https://example.test/p/42", warnings[0].Fields["page"])
}

func TestExtractText(t *testing.T) {
	ex := New(0, "", logger.NewNopLogger())

	text, err := ex.ExtractText(element{text: "Old bridge, 1910"})
	require.NoError(t, err)
	assert.Equal(t, "Old bridge, 1910", text)

	_, err = ex.ExtractText(brokenElement{})
	assert.True(t, errors.Is(err, errors.ErrorTypeExtraction))
}

func TestExtractLinksBound(t *testing.T) {
	ex := New(0, "", logger.NewNopLogger())
	base := "https://example.test/list"

	for n := 0; n <= 6; n++ {
		for limit := 1; limit <= 6; limit++ {
			t.Run(fmt.Sprintf("n=%d/limit=%d", n, limit), func(t *testing.T) {
				var elements []navigator.Element
				var want []LinkRecord
				for i := 0; i < n; i++ {
					// every third element has no href
					if i%3 == 2 {
						elements = append(elements, element{})
						continue
					}
					elements = append(elements, link(fmt.Sprintf("/p/%d", i)))
					if i < limit {
						want = append(want, LinkRecord{Href: fmt.Sprintf("https://example.test/p/%d", i)})
					}
				}

				got := ex.ExtractLinks(elements, limit, base)
				assert.LessOrEqual(t, len(got), min(n, limit))
				if len(want) == 0 {
					assert.Empty(t, got)
				} else {
					assert.Equal(t, want, got)
				}
			})
		}
	}
}

func TestExtractLinksDefaultsToPageSize(t *testing.T) {
	var elements []navigator.Element
	for i := 0; i < 20; i++ {
		elements = append(elements, link(fmt.Sprintf("/p/%d", i)))
	}

	assert.Len(t, New(0, "", logger.NewNopLogger()).ExtractLinks(elements, 0, ""), DefaultPageSize)
	assert.Len(t, New(4, "", logger.NewNopLogger()).ExtractLinks(elements, -1, ""), 4)
	assert.Len(t, New(4, "", logger.NewNopLogger()).ExtractLinks(elements, 7, ""), 7)
}

func TestHostOf(t *testing.T) {
	assert.Equal(t, "example.test", HostOf("https://example.test/list?page=1"))
	assert.Equal(t, "127.0.0.1:8080", HostOf("http://127.0.0.1:8080/list"))
	assert.Equal(t, "", HostOf("::not a url"))
}
