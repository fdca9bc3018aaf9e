package config

import (
	"encoding/json"
	"os"

	"github.com/muralvote/muralvote/internal/flagx"
)

// JsonConfig is an intermediate DTO used only for reading JSON
// configuration files. After unmarshalling, non-empty fields are copied
// into the runtime Config.
type JsonConfig struct {
	EndpointAddr   string `json:"endpoint_addr"`
	DatabaseDSN    string `json:"database_dsn"`
	S3RootUser     string `json:"s3_root_user"`
	S3RootPassword string `json:"s3_root_password"`
	S3Bucket       string `json:"s3_bucket"`
	S3Region       string `json:"s3_region"`
	S3BaseEndpoint string `json:"s3_base_endpoint"`

	AdminGroup        string `json:"admin_group"`
	WeightedVoteGroup string `json:"weighted_vote_group"`
	WeightedVoteValue int    `json:"weighted_vote_value"`

	AllowedExtensions []string `json:"allowed_extensions"`
	AllowedMimetypes  []string `json:"allowed_mimetypes"`
	PictureMinWidth   int      `json:"picture_min_width"`
	PictureMinHeight  int      `json:"picture_min_height"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The JSON file path comes from the -c or -config command-line flags; if
// neither is set, no file is loaded. If the file cannot be read or contains
// invalid JSON, the function panics. Zero-valued JSON fields leave the
// corresponding Config fields untouched so defaults survive a partial file.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	if c.EndpointAddr != "" {
		config.EndpointAddr = c.EndpointAddr
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.S3RootUser != "" {
		config.S3RootUser = c.S3RootUser
	}
	if c.S3RootPassword != "" {
		config.S3RootPassword = c.S3RootPassword
	}
	if c.S3Bucket != "" {
		config.S3Bucket = c.S3Bucket
	}
	if c.S3Region != "" {
		config.S3Region = c.S3Region
	}
	if c.S3BaseEndpoint != "" {
		config.S3BaseEndpoint = c.S3BaseEndpoint
	}
	if c.AdminGroup != "" {
		config.AdminGroup = c.AdminGroup
	}
	if c.WeightedVoteGroup != "" {
		config.WeightedVoteGroup = c.WeightedVoteGroup
	}
	if c.WeightedVoteValue != 0 {
		config.WeightedVoteValue = c.WeightedVoteValue
	}
	if len(c.AllowedExtensions) > 0 {
		config.AllowedExtensions = c.AllowedExtensions
	}
	if len(c.AllowedMimetypes) > 0 {
		config.AllowedMimetypes = c.AllowedMimetypes
	}
	if c.PictureMinWidth != 0 {
		config.PictureMinWidth = c.PictureMinWidth
	}
	if c.PictureMinHeight != 0 {
		config.PictureMinHeight = c.PictureMinHeight
	}
}
