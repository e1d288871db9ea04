package main

import (
	// business timezones must resolve on hosts without a zoneinfo database
	_ "time/tzdata"

	"github.com/frahmantamala/worklog/cmd"
)

func main() {
	cmd.Execute()
}
