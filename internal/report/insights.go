package report

import (
	"fmt"
	"io"

	"github.com/go-gota/gota/dataframe"
)

type BankInsight struct {
	Bank         string
	Reviews      int
	AvgSentiment float64
	FiveStar     int
	OneStar      int
}

func Insights(df dataframe.DataFrame) []BankInsight {
	var out []BankInsight
	for _, b := range banks(df) {
		sub := where(df, colBank, b)
		out = append(out, BankInsight{
			Bank:         b,
			Reviews:      sub.Nrow(),
			AvgSentiment: mean(sub, colScore),
			FiveStar:     countWhere(sub, colRating, 5),
			OneStar:      countWhere(sub, colRating, 1),
		})
	}
	return out
}

func WriteInsights(w io.Writer, ins []BankInsight) error {
	if _, err := fmt.Fprint(w, "FINTECH MOBILE CX ANALYTICS - AUTOMATED INSIGHTS\n"+
		"================================================\n\n"); err != nil {
		return err
	}
	for _, in := range ins {
		if _, err := fmt.Fprintf(w, "BANK: %s\n  - Average Sentiment: %.2f\n  - 5-Star Reviews: %d\n  - 1-Star Reviews: %d\n\n",
			in.Bank, in.AvgSentiment, in.FiveStar, in.OneStar); err != nil {
			return err
		}
	}
	return nil
}
