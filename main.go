package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"

	auditx "github.com/tanpawarit/Stocker-Inventory-Restock-Workflow/inventory/audit"
	contractx "github.com/tanpawarit/Stocker-Inventory-Restock-Workflow/inventory/contract"
	ledgerx "github.com/tanpawarit/Stocker-Inventory-Restock-Workflow/inventory/ledger"
	restockx "github.com/tanpawarit/Stocker-Inventory-Restock-Workflow/inventory/restock"
	storex "github.com/tanpawarit/Stocker-Inventory-Restock-Workflow/inventory/store"
	supplierx "github.com/tanpawarit/Stocker-Inventory-Restock-Workflow/inventory/supplier"
	configx "github.com/tanpawarit/Stocker-Inventory-Restock-Workflow/pkg/config"
	_ "github.com/tanpawarit/Stocker-Inventory-Restock-Workflow/pkg/logger/autoload"
	postgresx "github.com/tanpawarit/Stocker-Inventory-Restock-Workflow/pkg/postgres"
)

type AppConfig struct {
	StorageBackend string `envconfig:"STORAGE_BACKEND" default:"memory"`
	AuditEnabled   bool   `envconfig:"AUDIT_ENABLED" default:"false"`
	SessionID      string `envconfig:"SESSION_ID"`
}

func main() {
	appCfg := configx.MustNew[AppConfig]("")

	kind, err := storex.ParseBackendKind(appCfg.StorageBackend)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid storage backend")
	}

	ctx := context.Background()

	var db *bun.DB
	if kind == storex.BackendPostgres || appCfg.AuditEnabled {
		pgCfg := configx.MustNew[postgresx.Config]("POSTGRES")
		db = postgresx.MustOpen(*pgCfg)
		defer db.Close()
	}

	backend, err := storex.New(kind, db)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build stock backend")
	}
	if pg, ok := backend.(*storex.PostgresBackend); ok {
		if err := pg.Init(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to initialize products table")
		}
	}

	stockLedger, err := ledgerx.New(backend)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build stock ledger")
	}

	supplierCfg := configx.MustNew[supplierx.Config]("SUPPLIER")
	supplierClient := supplierx.MustNew(*supplierCfg)

	var sink contractx.AuditSink
	if appCfg.AuditEnabled {
		auditLog, err := auditx.NewPostgresAuditLog(db)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to build audit log")
		}
		if err := auditLog.Init(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to initialize conversations table")
		}
		sink = auditLog
	}

	workflow, err := restockx.New(stockLedger, supplierClient, sink, restockx.Config{
		SessionID: appCfg.SessionID,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build restock workflow")
	}

	log.Info().
		Str("backend", string(kind)).
		Bool("audit", appCfg.AuditEnabled).
		Msg("restock workflow ready")

	if product := flag.Arg(0); product != "" {
		result, err := workflow.RestockIfNeeded(ctx, product)
		if err != nil {
			log.Fatal().Err(err).Str("product", product).Msg("restock failed")
		}
		payload, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			log.Fatal().Err(err).Msg("failed to encode result")
		}
		fmt.Println(string(payload))
	}
}
