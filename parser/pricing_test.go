package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pricingPage = `<html><body>
<div class="pricing-table">
	<div class="pricing-card">
		<h3>Starter</h3>
		<span class="price">$29</span> per month
		<ul>
			<li>5 seats included</li>
			<li>Email support</li>
			<li>ok</li>
		</ul>
		<a class="btn" href="/signup">Start free trial</a>
	</div>
	<div class="pricing-card">
		<h3>Enterprise</h3>
		<span class="price">$299</span> billed annually
		<ul><li>Unlimited seats</li></ul>
		<button>Contact sales</button>
	</div>
</div>
</body></html>`

func TestPricingPlans(t *testing.T) {
	p, err := Parse(pricingPage, "https://example.com/pricing")
	require.NoError(t, err)

	plans := PricingPlans(p)
	require.Len(t, plans, 2)

	starter := plans[0]
	assert.Equal(t, "Starter", starter.PlanName)
	assert.Equal(t, "$29", starter.Price)
	assert.Equal(t, "monthly", starter.BillingCycle)
	assert.Equal(t, []string{"5 seats included", "Email support"}, starter.Features,
		"features shorter than 4 chars are dropped")
	assert.True(t, starter.HasFreeTrial)

	enterprise := plans[1]
	assert.Equal(t, "Enterprise", enterprise.PlanName)
	assert.Equal(t, "$299", enterprise.Price)
	assert.Equal(t, "annual", enterprise.BillingCycle)
	assert.False(t, enterprise.HasFreeTrial)
	assert.Equal(t, "Contact sales", enterprise.CTAText)
}

func TestPricingPlansRequireAtLeastTwoCards(t *testing.T) {
	single := `<div class="pricing-card"><h3>Only</h3>$9/mo</div>`
	p, err := Parse(single, "https://example.com/pricing")
	require.NoError(t, err)
	assert.Empty(t, PricingPlans(p))
}
