package util

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/replikativ/konserve-lmdb/lib/store"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// helpWidth is the column at which flag help text is broken.
const helpWidth = 50

// WrapHelp greedily re-flows help text so no line exceeds helpWidth. Words
// longer than the width stay on their own line unbroken.
func WrapHelp(text string) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(words[0])
	lineLen := len(words[0])

	for _, word := range words[1:] {
		if lineLen+1+len(word) > helpWidth {
			b.WriteByte('\n')
			lineLen = 0
		} else {
			b.WriteByte(' ')
			lineLen++
		}
		b.WriteString(word)
		lineLen += len(word)
	}

	return b.String()
}

// SetupStoreFlags adds the common store flags to a command
func SetupStoreFlags(cmd *cobra.Command) {
	key := "dir"
	cmd.PersistentFlags().String(key, "./konserve-data", WrapHelp("Directory of the store"))

	key = "map-size"
	cmd.PersistentFlags().Int64(key, 0, WrapHelp("LMDB map size in bytes (0 = default 1 GiB)"))

	key = "no-sync"
	cmd.PersistentFlags().Bool(key, false, WrapHelp("Disable fsync on commit (use the sync command for explicit flushes)"))

	key = "read-only"
	cmd.PersistentFlags().Bool(key, false, WrapHelp("Open the store read-only"))
}

// InitConfig initializes configuration from environment variables
func InitConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("konserve")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}

// BindCommandFlags binds the flags of a command to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}

// GetStoreOptions reads the store configuration from viper
func GetStoreOptions() *store.Options {
	opts := store.DefaultOptions()
	if v := viper.GetInt64("map-size"); v > 0 {
		opts.MapSize = v
	}
	opts.NoSync = viper.GetBool("no-sync")
	opts.ReadOnly = viper.GetBool("read-only")
	return opts
}

// GetStoreDir reads the store directory from viper
func GetStoreDir() string {
	return viper.GetString("dir")
}
