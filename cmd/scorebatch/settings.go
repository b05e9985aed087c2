package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag > config file > flag default. Cobra knows whether the operator
// set the flag; viper knows whether the config file has the key.

func stringSetting(cmd *cobra.Command, flag, key string) string {
	if cmd.Flags().Changed(flag) || !viper.IsSet(key) {
		v, _ := cmd.Flags().GetString(flag)
		return v
	}
	return viper.GetString(key)
}

func intSetting(cmd *cobra.Command, flag, key string) int {
	if cmd.Flags().Changed(flag) || !viper.IsSet(key) {
		v, _ := cmd.Flags().GetInt(flag)
		return v
	}
	return viper.GetInt(key)
}

func boolSetting(cmd *cobra.Command, flag, key string) bool {
	if cmd.Flags().Changed(flag) || !viper.IsSet(key) {
		v, _ := cmd.Flags().GetBool(flag)
		return v
	}
	return viper.GetBool(key)
}
