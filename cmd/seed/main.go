package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/nvaghela/dukaan-backend/config"
	"github.com/nvaghela/dukaan-backend/internal/app/model"
	"github.com/nvaghela/dukaan-backend/internal/db"
	"github.com/nvaghela/dukaan-backend/pkg/util"
)

// Bulk seller onboarding: imports a seller roster from an .xlsx export and
// creates accounts with pre-filled KYC submissions in documents_pending.
//
// Expected columns:
//
//	0 email | 1 name | 2 phone | 3 company_name | 4 state | 5 city
//	6 pin_code | 7 mobile_number | 8 pan_number | 9 aadhaar_number | 10 gst_number
func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run cmd/seed/main.go <xlsx_file_path>")
	}

	filePath := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	sellers, err := readSellersFromXLSX(filePath)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("Total sellers to import: %d\n", len(sellers))

	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	imported := 0
	for _, entry := range sellers {
		if err := importSeller(entry); err != nil {
			fmt.Printf("Skipping %s: %v\n", entry.user.Email, err)
			continue
		}
		imported++
	}

	fmt.Println("Import completed successfully!")
	fmt.Printf("Total sellers imported: %d\n", imported)
}

type rosterEntry struct {
	user       model.User
	submission model.KYCSubmission
}

func readSellersFromXLSX(filePath string) ([]rosterEntry, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no sheets found in XLSX file")
	}

	fmt.Printf("Reading sheet: %s\n", sheetName)

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("no data found in XLSX file")
	}

	var entries []rosterEntry
	seenEmails := make(map[string]bool)
	skippedCount := 0

	for i, row := range rows {
		// First row is the header
		if i == 0 {
			fmt.Printf("Headers: %v\n", row)
			continue
		}

		if len(row) < 10 {
			skippedCount++
			continue
		}

		email := strings.ToLower(strings.TrimSpace(row[0]))
		name := strings.TrimSpace(row[1])
		phone := strings.TrimSpace(row[2])
		companyName := strings.TrimSpace(row[3])
		state := strings.TrimSpace(row[4])
		city := strings.TrimSpace(row[5])
		pinCode := strings.TrimSpace(row[6])
		mobile := strings.TrimSpace(row[7])
		pan := strings.ToUpper(strings.TrimSpace(row[8]))
		aadhaar := strings.TrimSpace(row[9])

		var gst string
		if len(row) > 10 {
			gst = strings.ToUpper(strings.TrimSpace(row[10]))
		}

		if email == "" || name == "" || companyName == "" {
			skippedCount++
			continue
		}
		if seenEmails[email] {
			skippedCount++
			continue
		}

		// Identity numbers must be well-formed before they enter the pipeline
		if !util.IsValidPAN(pan) || !util.IsValidAadhaar(aadhaar) {
			fmt.Printf("Row %d: invalid PAN or Aadhaar, skipping\n", i+1)
			skippedCount++
			continue
		}
		if gst != "" && !util.IsValidGSTIN(gst) {
			fmt.Printf("Row %d: invalid GSTIN, skipping\n", i+1)
			skippedCount++
			continue
		}
		if pinCode != "" && !util.IsValidPINCode(pinCode) {
			fmt.Printf("Row %d: invalid PIN code, skipping\n", i+1)
			skippedCount++
			continue
		}
		if mobile != "" && !util.IsValidMobile(mobile) {
			fmt.Printf("Row %d: invalid mobile number, skipping\n", i+1)
			skippedCount++
			continue
		}

		seenEmails[email] = true
		entries = append(entries, rosterEntry{
			user: model.User{
				Email: email,
				Name:  name,
				Phone: phone,
				Role:  model.RoleSeller,
			},
			submission: model.KYCSubmission{
				CompanyName:   companyName,
				State:         state,
				City:          city,
				PINCode:       pinCode,
				MobileNumber:  mobile,
				PANNumber:     pan,
				AadhaarNumber: aadhaar,
				GSTNumber:     gst,
				Status:        model.StatusDocumentsPending,
				Version:       1,
			},
		})
	}

	fmt.Printf("Skipped rows: %d\n", skippedCount)
	return entries, nil
}

func importSeller(entry rosterEntry) error {
	// Imported accounts get a placeholder password; sellers reset it on first
	// login through the frontend flow.
	hash, err := util.HashPassword("changeme-" + entry.user.Email)
	if err != nil {
		return err
	}
	entry.user.PasswordHash = hash

	handle := db.GetDB()

	var existing model.User
	if err := handle.Where("email = ?", entry.user.Email).First(&existing).Error; err == nil {
		return fmt.Errorf("account already exists")
	}

	if err := handle.Create(&entry.user).Error; err != nil {
		return err
	}

	entry.submission.UserID = entry.user.ID
	return handle.Create(&entry.submission).Error
}
