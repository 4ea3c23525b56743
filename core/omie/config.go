package omie

// Config holds the Omie ERP endpoint, credentials and client limits.
type Config struct {
	// BaseURL is the API root; call paths such as /geral/clientes/ are appended.
	BaseURL string `mapstructure:"base_url" default:"https://app.omie.com.br/api/v1"`
	// AppKey identifies the Omie application.
	AppKey string `mapstructure:"app_key" default:""`
	// AppSecret authenticates the Omie application.
	AppSecret string `mapstructure:"app_secret" default:""`
	// PageSize is the number of records requested per page.
	PageSize int `mapstructure:"page_size" default:"50"`
	// RequestsPerSecond throttles calls to the ERP. Zero means unlimited.
	RequestsPerSecond float64 `mapstructure:"requests_per_second" default:"3"`
	// TimeoutSeconds bounds a single HTTP call.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}
