package crawler

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParseURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestParsePageExtractsTitleAndText(t *testing.T) {
	body := []byte(`<html><head><title> My Page </title></head>
		<body><h1>Heading</h1><p>Some   text
		across lines.</p></body></html>`)

	p, err := parsePage(body, mustParseURL(t, "http://example.com/"))
	require.NoError(t, err)

	assert.Equal(t, "My Page", p.title)
	assert.Equal(t, "My Page Heading Some text across lines.", p.text)
}

func TestParsePageStripsScriptAndStyle(t *testing.T) {
	body := []byte(`<html><body>
		<script>var hidden = "secret";</script>
		<style>.x { color: red }</style>
		<noscript>enable js</noscript>
		<p>visible</p></body></html>`)

	p, err := parsePage(body, mustParseURL(t, "http://example.com/"))
	require.NoError(t, err)

	assert.Equal(t, "visible", p.text)
}

func TestParsePageResolvesRelativeLinks(t *testing.T) {
	body := []byte(`<html><body>
		<a href="/docs">docs</a>
		<a href="about">about</a>
		<a href="http://example.com/abs">abs</a>
		</body></html>`)

	p, err := parsePage(body, mustParseURL(t, "http://example.com/pages/index.html"))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"http://example.com/docs",
		"http://example.com/pages/about",
		"http://example.com/abs",
	}, p.links)
}

func TestParsePageNormalizesLinks(t *testing.T) {
	body := []byte(`<html><body>
		<a href="http://EXAMPLE.COM">home</a>
		<a href="http://example.com/Docs#intro">docs</a>
		</body></html>`)

	p, err := parsePage(body, mustParseURL(t, "http://example.com/"))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"http://example.com/",
		"http://example.com/Docs",
	}, p.links)
}

func TestParsePageDropsNonNavigableLinks(t *testing.T) {
	body := []byte(`<html><body>
		<a href="#top">top</a>
		<a href="javascript:alert(1)">js</a>
		<a href="mailto:someone@example.com">mail</a>
		<a href="ftp://example.com/file">ftp</a>
		<a href="/keep#fragment">keep</a>
		</body></html>`)

	p, err := parsePage(body, mustParseURL(t, "http://example.com/"))
	require.NoError(t, err)

	assert.Equal(t, []string{"http://example.com/keep"}, p.links)
}

func TestParsePageMalformedHTML(t *testing.T) {
	// html.Parse is lenient; even broken markup yields a document.
	body := []byte(`<p>unclosed <a href="/x">link`)

	p, err := parsePage(body, mustParseURL(t, "http://example.com/"))
	require.NoError(t, err)

	assert.Contains(t, p.text, "unclosed")
	assert.Equal(t, []string{"http://example.com/x"}, p.links)
}
