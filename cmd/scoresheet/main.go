package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"
	"ohpshaw-server/pkg/history"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s GAME_LOG\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	g, err := history.OpenFileStore(flag.Arg(0)).Load()
	if err != nil {
		logrus.WithError(err).WithField("file", flag.Arg(0)).Fatal("could not read game log")
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		writePlain(os.Stdout, g)
		return
	}

	table, err := pterm.DefaultTable.WithHasHeader().WithData(tableData(g)).Srender()
	if err != nil {
		logrus.WithError(err).Fatal("could not render score sheet")
	}

	pterm.DefaultBox.WithTitle(pterm.LightYellow(g.Start.Format("2006-01-02 15:04"))).Println(table)
}

// tableData returns one row per hand with each player's bid, tricks made and running score
func tableData(g *history.Game) pterm.TableData {
	header := append([]string{"Hand", "Cards"}, g.Names()...)
	data := pterm.TableData{header}

	for i, row := range g.ScoreSheet() {
		line := []string{strconv.Itoa(i + 1), strconv.Itoa(row.NumCards)}
		for _, entry := range row.Players {
			line = append(line, fmt.Sprintf("%d/%d %d", entry.Bid, entry.Made, entry.Score))
		}

		data = append(data, line)
	}

	return data
}

func writePlain(w io.Writer, g *history.Game) {
	for _, line := range tableData(g) {
		fmt.Fprintln(w, strings.Join(line, "\t"))
	}
}
