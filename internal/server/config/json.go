package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/revkeeper/internal/flagx"
	"github.com/dmitrijs2005/revkeeper/internal/timex"
)

// JsonConfig is the DTO used only for reading JSON config files. It uses
// timex.Duration for interval fields, which parses both string values such
// as "15m" and integer nanoseconds, and is copied into the runtime Config.
type JsonConfig struct {
	EndpointAddrGRPC      string         `json:"endpoint_addr_grpc"`
	DatabaseDSN           string         `json:"database_dsn"`
	SecretKey             string         `json:"secret_key"`
	TokenValidityDuration timex.Duration `json:"token_validity_duration"`
	S3RootUser            string         `json:"s3_root_user"`
	S3RootPassword        string         `json:"s3_root_password"`
	S3Bucket              string         `json:"s3_bucket"`
	S3Region              string         `json:"s3_region"`
	S3BaseEndpoint        string         `json:"s3_base_endpoint"`
	SnapshotPrefix        string         `json:"snapshot_prefix"`
	SnapshotInterval      timex.Duration `json:"snapshot_interval"`
}

// parseJson loads configuration values from the JSON file named by the
// -c/-config flags into config. If neither flag is set, nothing is loaded.
// An unreadable or malformed file panics: a config file that exists but
// does not parse must not be silently ignored.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	config.EndpointAddrGRPC = c.EndpointAddrGRPC
	config.DatabaseDSN = c.DatabaseDSN
	config.SecretKey = c.SecretKey
	config.TokenValidityDuration = c.TokenValidityDuration.Std()
	config.S3RootUser = c.S3RootUser
	config.S3RootPassword = c.S3RootPassword
	config.S3Bucket = c.S3Bucket
	config.S3Region = c.S3Region
	config.S3BaseEndpoint = c.S3BaseEndpoint
	config.SnapshotPrefix = c.SnapshotPrefix
	config.SnapshotInterval = c.SnapshotInterval.Std()
}
