package adapter

// AuthMethod names how an adapter authenticates.
type AuthMethod string

const (
	AuthNone        AuthMethod = "none"
	AuthBasic       AuthMethod = "basic"
	AuthBearer      AuthMethod = "bearer"
	AuthAPIKey      AuthMethod = "api_key"
	AuthIAMRole     AuthMethod = "iam_role"
	AuthCertificate AuthMethod = "certificate"
)

// AuthConfig carries adapter credentials. Only the fields relevant to Method
// are set. Values are secrets: they participate in the check, never in its
// output.
type AuthConfig struct {
	Method   AuthMethod `json:"method"`
	Username string     `json:"username,omitempty"`
	Password string     `json:"password,omitempty"`
	Token    string     `json:"token,omitempty"`
	APIKey   string     `json:"api_key,omitempty"`
	Header   string     `json:"header,omitempty"`
	RoleARN  string     `json:"role_arn,omitempty"`
	CertPath string     `json:"cert_path,omitempty"`
	KeyPath  string     `json:"key_path,omitempty"`
}
