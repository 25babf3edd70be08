package importer

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"fjacquet/budget-cli/internal/dateutils"
	"fjacquet/budget-cli/internal/logging"
	"fjacquet/budget-cli/internal/models"
)

// exportRow is the flat CSV shape transactions are exported in.
type exportRow struct {
	ID          string `csv:"ID"`
	Date        string `csv:"Date"`
	Description string `csv:"Description"`
	Amount      string `csv:"Amount"`
	Account     string `csv:"Account"`
}

// ExportTransactions writes transactions to a CSV file, creating the parent
// directory if needed.
func ExportTransactions(transactions []models.Transaction, csvFile string) error {
	log.Info("Writing transactions to CSV file",
		logging.Field{Key: logging.FieldFile, Value: csvFile},
		logging.Field{Key: logging.FieldCount, Value: len(transactions)})

	if err := os.MkdirAll(filepath.Dir(csvFile), 0750); err != nil {
		log.WithError(err).Error("Failed to create directory")
		return fmt.Errorf("error creating directory: %w", err)
	}
	file, err := os.Create(csvFile)
	if err != nil {
		log.WithError(err).Error("Failed to create CSV file")
		return fmt.Errorf("error creating CSV file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.WithError(err).Warn("Failed to close file")
		}
	}()

	rows := make([]exportRow, 0, len(transactions))
	for _, tx := range transactions {
		rows = append(rows, exportRow{
			ID:          tx.ID,
			Date:        dateutils.ToISODate(tx.Date),
			Description: tx.Description,
			Amount:      tx.Amount.StringFixed(2),
			Account:     tx.Account,
		})
	}

	if err := gocsv.MarshalFile(&rows, file); err != nil {
		log.WithError(err).Error("Failed to marshal transactions to CSV")
		return fmt.Errorf("error writing CSV data: %w", err)
	}
	return nil
}
