package main

import (
	lambdasync "github.com/raywall/terraform-provider-lambdasync/provider"

	"github.com/hashicorp/terraform-plugin-sdk/v2/plugin"
)

func main() {
	plugin.Serve(&plugin.ServeOpts{
		ProviderFunc: lambdasync.Provider,
	})
}
