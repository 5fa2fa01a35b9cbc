package models

import (
	"log"

	"bitbucket.org/sofidex/tracing_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&Profile{}, &FieldMapping{},
		&CaseRecord{}, &ContestationLink{},
		&RequestItem{}, &KeywordRule{}, &TariffRule{},
		&BillingEntry{},
		&ImportBatch{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
