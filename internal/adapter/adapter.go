// Package adapter defines the integration adapter model: the adapter kinds
// the health engine knows how to probe, their connection configuration, and
// the health check request/result shapes.
package adapter

// Type identifies the kind of external system an adapter fronts.
type Type string

const (
	TypeAWSSSM           Type = "aws_ssm"
	TypeAWSSecretsMgr    Type = "aws_secrets_manager"
	TypeGCPSecretManager Type = "gcp_secret_manager"
	TypeAzureKeyVault    Type = "azure_key_vault"
	TypeHashicorpVault   Type = "hashicorp_vault"
	TypeRedis            Type = "redis"
	TypePostgres         Type = "postgres"
	TypeMySQL            Type = "mysql"
	TypeHTTP             Type = "http"
	TypeGRPC             Type = "grpc"
	TypeKafka            Type = "kafka"
	TypeRabbitMQ         Type = "rabbitmq"
	TypeS3               Type = "s3"
	TypeTCP              Type = "tcp"
	TypeCustom           Type = "custom"
)

// DefaultPort returns the conventional port for the adapter kind, or 0 when
// the kind has none (cloud SDK endpoints carry their own addressing).
func (t Type) DefaultPort() int {
	switch t {
	case TypeRedis:
		return 6379
	case TypePostgres:
		return 5432
	case TypeMySQL:
		return 3306
	case TypeHTTP:
		return 80
	case TypeGRPC:
		return 50051
	case TypeKafka:
		return 9092
	case TypeRabbitMQ:
		return 5672
	case TypeHashicorpVault:
		return 8200
	default:
		return 0
	}
}

// DefaultHealthPath returns the conventional health probe path for the
// adapter kind, or "" when probing is pure connectivity.
func (t Type) DefaultHealthPath() string {
	switch t {
	case TypeHTTP:
		return "/health"
	case TypeGRPC:
		return "grpc.health.v1.Health/Check"
	case TypeHashicorpVault:
		return "/v1/sys/health"
	default:
		return ""
	}
}

// Config describes one adapter to check. Credentials ride in Auth and are
// never echoed into results or signals.
type Config struct {
	ID         string            `json:"id"`
	Type       Type              `json:"adapter_type"`
	Endpoint   string            `json:"endpoint"`
	Auth       *AuthConfig       `json:"auth,omitempty"`
	HealthPath string            `json:"health_path,omitempty"`
	Properties map[string]string `json:"properties,omitempty"`
}

// ProbePath returns the configured health path, falling back to the kind's
// conventional one.
func (c Config) ProbePath() string {
	if c.HealthPath != "" {
		return c.HealthPath
	}
	return c.Type.DefaultHealthPath()
}
