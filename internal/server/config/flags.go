package config

import (
	"flag"
	"os"
	"time"

	"github.com/enrollhub/admitd/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-d string   PostgreSQL DSN
//	-s string   token-signing secret
//	-t int      session TTL, hours
//	-k int      sessions kept per actor after pruning
//	-x string   required application-id prefix
//	-f string   portfolio staging cache root
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-s", "-t", "-k", "-x", "-f", "-u", "-p", "-b", "-g", "-e"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "token-signing secret")

	sessionTTLHours := fs.Int("t", int(config.SessionTTL.Hours()), "session TTL (in hours)")
	fs.IntVar(&config.SessionRetention, "k", config.SessionRetention, "sessions kept per actor")

	fs.StringVar(&config.ApplicationIDPrefix, "x", config.ApplicationIDPrefix, "application id prefix")
	fs.StringVar(&config.CacheDir, "f", config.CacheDir, "portfolio staging cache root")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.SessionTTL = time.Duration(*sessionTTLHours) * time.Hour
}
