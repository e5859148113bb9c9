package kv

import (
	"fmt"

	"github.com/replikativ/konserve-lmdb/lib/store"
	"github.com/spf13/cobra"
)

var (
	setCmd = &cobra.Command{
		Use:   "set [key] [value]",
		Short: "Sets the value for a key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			value := args[1]
			if _, _, err := localStore.Assoc(key, nil, value); err != nil {
				return err
			}
			fmt.Println("set successfully")
			return nil
		},
	}
	getCmd = &cobra.Command{
		Use:   "get [key]",
		Short: "Gets the value for a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, found, err := localStore.Get(args[0])
			if err != nil {
				return err
			}
			if !found {
				fmt.Println("key not found")
				return nil
			}
			fmt.Printf("%v\n", value)
			return nil
		},
	}
	getInCmd = &cobra.Command{
		Use:   "getin [key] [path...]",
		Short: "Gets a nested value inside the record stored for a key",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := make([]any, len(args))
			for i, a := range args {
				path[i] = a
			}
			value, err := localStore.GetIn(path, nil)
			if err != nil {
				return err
			}
			if value == nil {
				fmt.Println("not found")
				return nil
			}
			fmt.Printf("%v\n", value)
			return nil
		},
	}
	delCmd = &cobra.Command{
		Use:   "del [key]",
		Short: "Deletes a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			existed, err := localStore.Dissoc(args[0])
			if err != nil {
				return err
			}
			if existed {
				fmt.Println("deleted")
			} else {
				fmt.Println("key not found")
			}
			return nil
		},
	}
	hasCmd = &cobra.Command{
		Use:   "has [key]",
		Short: "Checks whether a key exists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			exists, err := localStore.Exists(args[0])
			if err != nil {
				return err
			}
			fmt.Println(exists)
			return nil
		},
	}
	keysCmd = &cobra.Command{
		Use:   "keys",
		Short: "Lists all keys with their metadata projection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			infos, err := localStore.Keys()
			if err != nil {
				return err
			}
			for _, info := range infos {
				fmt.Printf("%v\t%s\t%s\n", info.Key, info.Type, info.LastWrite.Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}
	metaCmd = &cobra.Command{
		Use:   "meta [key]",
		Short: "Shows the metadata stored for a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, err := localStore.GetMeta(args[0])
			if err != nil {
				return err
			}
			if meta == nil {
				fmt.Println("no metadata")
				return nil
			}
			for k, v := range meta {
				fmt.Printf("%v\t%v\n", k, v)
			}
			return nil
		},
	}
	bsetCmd = &cobra.Command{
		Use:   "bset [key] [file]",
		Short: "Stores the contents of a file as a binary value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, written, err := localStore.BAssoc(args[0], nil, store.Path(args[1]))
			if err != nil {
				return err
			}
			fmt.Printf("stored %d bytes\n", len(written))
			return nil
		},
	}
	syncCmd = &cobra.Command{
		Use:   "sync",
		Short: "Flushes buffered writes to disk",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := localStore.Sync(); err != nil {
				return err
			}
			fmt.Println("synced")
			return nil
		},
	}
	infoCmd = &cobra.Command{
		Use:   "info",
		Short: "Shows store metadata",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := localStore.Info()
			if err != nil {
				return err
			}
			fmt.Printf("path:     %s\n", info.Path)
			fmt.Printf("entries:  %d\n", info.Entries)
			fmt.Printf("map size: %d\n", info.MapSize)
			return nil
		},
	}
)
