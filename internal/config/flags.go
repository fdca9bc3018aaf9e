package config

import (
	"flag"
	"os"

	"github.com/muralvote/muralvote/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint
//	-m string   admin group name
//	-w string   weighted-vote group name
//	-v int      weighted-vote value
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-u", "-p", "-b", "-g", "-e", "-m", "-w", "-v"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.AdminGroup, "m", config.AdminGroup, "admin group name")
	fs.StringVar(&config.WeightedVoteGroup, "w", config.WeightedVoteGroup, "weighted-vote group name")
	fs.IntVar(&config.WeightedVoteValue, "v", config.WeightedVoteValue, "weighted-vote value")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
