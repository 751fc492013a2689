package main

import (
	"fmt"
	"io"
	"time"

	"github.com/markkurossi/tabulate"

	"github.com/ineyio/ripemd"
)

func printStats(w io.Writer, events []ripemd.SumEvent) {
	if len(events) == 0 {
		return
	}

	tab := tabulate.New(tabulate.UnicodeLight)
	tab.Header("Name").SetAlign(tabulate.ML)
	tab.Header("Bytes").SetAlign(tabulate.MR)
	tab.Header("Time").SetAlign(tabulate.MR)
	tab.Header("MB/s").SetAlign(tabulate.MR)
	tab.Header("Resumed").SetAlign(tabulate.ML)

	var bytes uint64
	var total time.Duration
	for _, e := range events {
		row := tab.Row()
		row.Column(e.Name)
		row.Column(fmt.Sprintf("%d", e.Bytes))
		row.Column(e.Duration.String())
		row.Column(throughput(e.Bytes, e.Duration))
		if e.Err != nil {
			row.Column("failed").SetFormat(tabulate.FmtItalic)
		} else {
			row.Column(fmt.Sprintf("%v", e.Resumed))
		}
		bytes += e.Bytes
		total += e.Duration
	}

	row := tab.Row()
	row.Column("Total").SetFormat(tabulate.FmtBold)
	row.Column(fmt.Sprintf("%d", bytes)).SetFormat(tabulate.FmtBold)
	row.Column(total.String()).SetFormat(tabulate.FmtBold)
	row.Column(throughput(bytes, total)).SetFormat(tabulate.FmtBold)
	row.Column("")

	tab.Print(w)
}

func throughput(n uint64, d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	return fmt.Sprintf("%.2f", float64(n)/d.Seconds()/(1<<20))
}
