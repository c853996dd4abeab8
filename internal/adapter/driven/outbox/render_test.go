package outbox

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderHTML_EmptyInput(t *testing.T) {
	assert.Equal(t, "", renderHTML(""))
}

func TestRenderHTML_Link(t *testing.T) {
	result := renderHTML("[Recover access](http://localhost:3001/#/recover/recover_abc)")
	assert.Contains(t, result, `href="http://localhost:3001/#/recover/recover_abc"`)
	assert.Contains(t, result, "Recover access</a>")
}

func TestRenderHTML_IndentedTokenBecomesCode(t *testing.T) {
	result := renderHTML("Your token:\n\n    cust_0123abcd\n")
	assert.Contains(t, result, "<code>cust_0123abcd")
}

func TestRenderHTML_StripsScript(t *testing.T) {
	result := renderHTML("hi <script>alert(1)</script> there")
	assert.NotContains(t, result, "<script>")
}

func TestRenderHTML_JavascriptLinkRemoved(t *testing.T) {
	result := renderHTML("[x](javascript:alert(1))")
	assert.NotContains(t, result, "javascript:")
}
