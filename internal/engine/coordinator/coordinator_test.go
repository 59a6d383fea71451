package coordinator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"mailvetter/internal/engine/models"
	"mailvetter/internal/engine/parser"
)

func TestGmailNormalize(t *testing.T) {
	addr := parser.Address{Local: "John.Doe+promo", Domain: "gmail.com"}
	assert.Equal(t, "johndoe@gmail.com", gmailNormalize(addr))

	nonGmail := parser.Address{Local: "john.doe", Domain: "example.com"}
	assert.Equal(t, "", gmailNormalize(nonGmail))
}

func TestIsRoleBased(t *testing.T) {
	assert.True(t, isRoleBased("Support"))
	assert.True(t, isRoleBased("no-reply"))
	assert.False(t, isRoleBased("jane.doe"))
}

func TestValidate_RejectsMalformedSyntax(t *testing.T) {
	c := New(nil, nil, nil, nil, nil, models.DefaultOptions())
	r := c.Validate(context.Background(), "not-an-email")
	assert.False(t, r.SyntaxValid)
	assert.NotEmpty(t, r.Reason)
	assert.Contains(t, r.ChecksPerformed, "syntax")
}

func TestValidateWithOptions_OverridesCoordinatorDefaults(t *testing.T) {
	c := New(nil, nil, nil, nil, nil, models.DefaultOptions())
	opts := c.Opts
	opts.CheckDomain = false
	opts.CheckMX = false
	opts.CheckSMTP = false
	opts.CheckDisposable = false
	opts.CheckTypos = false

	r := c.ValidateWithOptions(context.Background(), "jane@example.com", opts)
	assert.True(t, r.SyntaxValid)
	assert.True(t, r.DomainValid)
	assert.True(t, r.MXFound)
}
