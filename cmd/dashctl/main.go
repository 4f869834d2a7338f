// Package main консольный клиент дашборда: входит на сервер, загружает таблицы
// в локальный кеш и печатает сводку, напоминания, выгрузку или проводит платёж.
package main

import (
	"fmt"
	"os"
	"time"
)

func main() {
	if err := newRootCmd(os.Stdout, time.Now).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
