package adapter

import "fmt"

// Presets for common managed services. Each returns a Config wired with the
// kind's conventional endpoint shape so callers only supply what varies.

// AWSSSMPreset targets the SSM Parameter Store endpoint for a region.
func AWSSSMPreset(id, region string) Config {
	return Config{
		ID:       id,
		Type:     TypeAWSSSM,
		Endpoint: fmt.Sprintf("https://ssm.%s.amazonaws.com", region),
		Properties: map[string]string{
			"region": region,
		},
	}
}

// AWSSecretsManagerPreset targets the Secrets Manager endpoint for a region.
func AWSSecretsManagerPreset(id, region string) Config {
	return Config{
		ID:       id,
		Type:     TypeAWSSecretsMgr,
		Endpoint: fmt.Sprintf("https://secretsmanager.%s.amazonaws.com", region),
		Properties: map[string]string{
			"region": region,
		},
	}
}

// GCPSecretManagerPreset targets the global Secret Manager endpoint.
func GCPSecretManagerPreset(id, project string) Config {
	return Config{
		ID:       id,
		Type:     TypeGCPSecretManager,
		Endpoint: "https://secretmanager.googleapis.com",
		Properties: map[string]string{
			"project": project,
		},
	}
}

// VaultPreset targets a HashiCorp Vault server. The health path defaults to
// the sys/health endpoint.
func VaultPreset(id, addr string) Config {
	return Config{
		ID:       id,
		Type:     TypeHashicorpVault,
		Endpoint: addr,
	}
}

// RedisPreset targets a Redis instance on the conventional port.
func RedisPreset(id, host string) Config {
	return Config{
		ID:       id,
		Type:     TypeRedis,
		Endpoint: fmt.Sprintf("%s:%d", host, TypeRedis.DefaultPort()),
	}
}

// PostgresPreset targets a PostgreSQL instance on the conventional port.
func PostgresPreset(id, host string) Config {
	return Config{
		ID:       id,
		Type:     TypePostgres,
		Endpoint: fmt.Sprintf("%s:%d", host, TypePostgres.DefaultPort()),
	}
}
