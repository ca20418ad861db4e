package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "paygate",
	Short: "paygate orchestrates card step-up authentication challenges",
	Long: `paygate is the payment authentication gateway: it opens durable payment
sessions, drives the card network's step-up protocol (enrollment, device
fingerprint, challenge, completion) and layers an optional risk challenge on
top of the cardholder's form.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
