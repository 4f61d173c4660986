package models

import (
	"log"

	"github.com/mhmd-ipx/Lead-sub001/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&Company{}, &User{},
		&FinancialDocument{}, &Bill{},
		&ExamItem{}, &ExamAssignment{},
		&Ticket{}, &TicketReply{},
		&Document{},
		&History{},
		&NotificationRecord{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
