package constants

const (
	// Environment constants
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"

	// Default pagination
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100

	// Caller identity headers set by the upstream auth gateway
	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"

	RoleAdmin = "admin"

	// Database table names
	TableApps                     = "apps"
	TablePlans                    = "subscription_plans"
	TablePlanFeatures             = "plan_features"
	TableSubscriptions            = "subscriptions"
	TableSubscriptionEvents       = "subscription_events"
	TablePayments                 = "payments"
	TablePromoCodes               = "promo_codes"
	TablePromoCodeApplicablePlans = "promo_code_applicable_plans"
	TablePromoCodeApplicableUsers = "promo_code_applicable_users"
	TableSubscriptionPromoCodes   = "subscription_promo_codes"

	DefaultCurrency = "USD"

	// Cache namespaces. Each logical cache owns one prefix so pattern
	// invalidation in one never touches another.
	CacheNamespacePlans         = "subscription:plans:"
	CacheNamespacePromos        = "subscription:promo:"
	CacheNamespaceSubscriptions = "subscription:user-subs:"
	CacheNamespaceAnalytics     = "subscription:analytics:"
)
