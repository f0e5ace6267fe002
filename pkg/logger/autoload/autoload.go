// Package autoload initializes the global logger from the environment when
// blank-imported from main.
package autoload

import (
	configx "github.com/tanpawarit/Stocker-Inventory-Restock-Workflow/pkg/config"
	logx "github.com/tanpawarit/Stocker-Inventory-Restock-Workflow/pkg/logger"
)

func init() {
	logx.Init(*configx.MustNew[logx.Config]("LOG"))
}
