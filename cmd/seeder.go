package cmd

import (
	"fmt"
	"log"
	"time"

	employeeDatamodel "github.com/frahmantamala/attendance-engine/internal/core/datamodel/employee"
	leaveDatamodel "github.com/frahmantamala/attendance-engine/internal/core/datamodel/leave"
	shiftDatamodel "github.com/frahmantamala/attendance-engine/internal/core/datamodel/shift"
	"github.com/frahmantamala/attendance-engine/internal/shift"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed shifts, employees and leave for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer sqlDB.Close()

		db, err := initGorm(sqlDB)
		if err != nil {
			log.Fatalf("failed to init gorm: %v", err)
		}

		if clearData {
			for _, table := range []string{"attendances", "leaves", "employees", "shifts"} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing attendance data")
		}

		morning := seedShift(db, "Morning", "08:00", "16:00")
		night := seedShift(db, "Night", "22:00", "06:00")

		pin, err := bcrypt.GenerateFromPassword([]byte("1234"), cfg.Security.BCryptCost)
		if err != nil {
			log.Fatalf("failed to hash pin: %v", err)
		}
		pinHash := string(pin)

		employees := []employeeDatamodel.Employee{
			{EmployeeID: "EMP001", FullName: "Ayu Lestari", Department: "Operations", Position: "Supervisor", ShiftID: &morning.ID, RFIDCardID: strPtr("CARD-0001"), PINHash: &pinHash},
			{EmployeeID: "EMP002", FullName: "Budi Santoso", Department: "Warehouse", Position: "Picker", ShiftID: &morning.ID, RFIDCardID: strPtr("CARD-0002"), PINHash: &pinHash},
			{EmployeeID: "EMP003", FullName: "Citra Dewi", Department: "Warehouse", Position: "Forklift Operator", ShiftID: &night.ID, RFIDCardID: strPtr("CARD-0003"), PINHash: &pinHash},
			{EmployeeID: "EMP004", FullName: "Dimas Pratama", Department: "Security", Position: "Guard", ShiftID: &night.ID, PINHash: &pinHash,
				FaceEncoding: []float64{0.12, -0.04, 0.33, 0.27, -0.18, 0.09, 0.41, -0.22}},
		}

		for i := range employees {
			emp := employees[i]
			emp.ID = uuid.New().String()
			emp.Status = "ACTIVE"
			result := db.Where(employeeDatamodel.Employee{EmployeeID: emp.EmployeeID}).FirstOrCreate(&emp)
			if result.Error != nil {
				log.Fatalf("failed to seed employee %s: %v", emp.EmployeeID, result.Error)
			}
			if result.RowsAffected > 0 {
				fmt.Println("Seeded employee:", emp.EmployeeID, emp.FullName)
			}
			employees[i] = emp
		}

		// EMP003 is on approved leave for the coming week
		today := time.Now()
		start := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
		vacation := leaveDatamodel.Leave{
			ID:         uuid.New().String(),
			EmployeeID: employees[2].ID,
			LeaveType:  "ANNUAL",
			StartDate:  start,
			EndDate:    start.AddDate(0, 0, 6),
			Status:     "APPROVED",
			Reason:     strPtr("family visit"),
		}
		if err := db.Where(leaveDatamodel.Leave{EmployeeID: vacation.EmployeeID, StartDate: vacation.StartDate}).FirstOrCreate(&vacation).Error; err != nil {
			log.Fatalf("failed to seed leave: %v", err)
		}

		fmt.Println("Seeded demo data; every demo PIN is 1234")
	},
}

func seedShift(db *gorm.DB, name, start, end string) *shiftDatamodel.Shift {
	s := &shift.Shift{
		ID:                 uuid.New().String(),
		Name:               name,
		StartTime:          start,
		EndTime:            end,
		GracePeriodMinutes: 15,
		IsActive:           true,
	}
	if err := s.Validate(); err != nil {
		log.Fatalf("invalid shift %s: %v", name, err)
	}

	row := shift.ToDataModel(s)
	if err := db.Where(shiftDatamodel.Shift{Name: name}).FirstOrCreate(row).Error; err != nil {
		log.Fatalf("failed to seed shift %s: %v", name, err)
	}
	fmt.Printf("Seeded shift: %s %s-%s overnight=%t\n", name, start, end, s.IsOvernight())
	return row
}

func strPtr(s string) *string {
	return &s
}
