package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/alovak/cardflow-checkout/checkout"
	"github.com/alovak/cardflow-checkout/checkout/models"
	"github.com/alovak/cardflow-checkout/checkout/webhook"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func minorUnitsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "minor-units [amount] [currency]",
		Short: "Convert a major-unit amount to the processor's minor units",
		Long: `Convert a major-unit amount to minor units, truncating fractions of a minor unit.
With --reverse the amount is read as minor units and printed in major units.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			currency, err := models.ParseCurrency(args[1])
			if err != nil {
				return err
			}

			if reverse, _ := cmd.Flags().GetBool("reverse"); reverse {
				value, err := strconv.ParseUint(args[0], 10, 64)
				if err != nil {
					return fmt.Errorf("parsing minor units %q: %w", args[0], err)
				}
				major := models.FromMinorUnits(value, currency)
				fmt.Fprintln(cmd.OutOrStdout(), major.StringFixed(currency.MinorUnitExponent()))
				return nil
			}

			amount, err := decimal.NewFromString(args[0])
			if err != nil {
				return fmt.Errorf("parsing amount %q: %w", args[0], err)
			}
			value, err := models.ToMinorUnits(amount, currency)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), value)
			return nil
		},
	}

	cmd.Flags().BoolP("reverse", "r", false, "convert minor units back to major units")

	return cmd
}

type responseSummary struct {
	ResultCode    models.ResultCode `json:"resultCode"`
	Final         bool              `json:"final"`
	Action        string            `json:"action,omitempty"`
	RefusalReason string            `json:"refusalReason,omitempty"`
	Response      json.RawMessage   `json:"response"`
}

func decodeResponseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode-response [file|-]",
		Short: "Decode a /payments or /payments/details response body",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			resp, err := models.DecodeResponse(data)
			if err != nil {
				return err
			}
			encoded, err := models.EncodeResponse(resp)
			if err != nil {
				return err
			}

			summary := responseSummary{
				ResultCode: resp.ResultCode(),
				Final:      models.IsFinal(resp),
				Response:   encoded,
			}
			if action, ok := models.RequiredAction(resp); ok {
				summary.Action = action.PaymentMethodType()
			}
			switch r := resp.(type) {
			case models.Refused:
				summary.RefusalReason = r.RefusalReason.String()
			case models.ErrorResult:
				summary.RefusalReason = r.RefusalReason.String()
			}

			return writeJSON(cmd, summary)
		},
	}
}

type itemSummary struct {
	EventCode    webhook.EventCode `json:"eventCode"`
	PSPReference string            `json:"pspReference,omitempty"`
	Success      *bool             `json:"success,omitempty"`
	Amount       string            `json:"amount,omitempty"`
}

func decodeWebhookCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode-webhook [file|-]",
		Short: "Decode a notification webhook delivery",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			delivery, err := webhook.Decode(data)
			if err != nil {
				return err
			}

			items := make([]itemSummary, 0, len(delivery.NotificationItems))
			for _, item := range delivery.NotificationItems {
				s := itemSummary{EventCode: item.EventCode()}
				if a, ok := item.(webhook.Authorisation); ok {
					success := a.Succeeded()
					s.PSPReference = a.PSPReference
					s.Success = &success
					s.Amount = a.Amount.Major().StringFixed(a.Amount.Currency.MinorUnitExponent()) + " " + a.Amount.Currency.String()
				}
				items = append(items, s)
			}

			return writeJSON(cmd, struct {
				Live  bool          `json:"live"`
				Items []itemSummary `json:"items"`
			}{delivery.IsLive(), items})
		},
	}
}

func refundCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "refund",
		Short: "Refund a captured payment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			psp, _ := flags.GetString("psp-reference")
			rawAmount, _ := flags.GetString("amount")
			rawCurrency, _ := flags.GetString("currency")
			reference, _ := flags.GetString("reference")
			merchantAccount, _ := flags.GetString("merchant-account")

			currency, err := models.ParseCurrency(rawCurrency)
			if err != nil {
				return err
			}
			major, err := decimal.NewFromString(rawAmount)
			if err != nil {
				return fmt.Errorf("parsing amount %q: %w", rawAmount, err)
			}
			amount, err := models.NewAmount(major, currency)
			if err != nil {
				return err
			}
			if reference == "" {
				reference = uuid.New().String()
			}

			gateway, err := newGateway(cmd)
			if err != nil {
				return err
			}

			result, err := gateway.Refund(cmd.Context(), psp, amount, reference, merchantAccount)
			if err != nil {
				return describe(err)
			}
			return writeJSON(cmd, result)
		},
	}

	cmd.Flags().String("psp-reference", "", "PSP reference of the payment to refund")
	cmd.Flags().String("amount", "", "amount in major units, e.g. 12.50")
	cmd.Flags().String("currency", "", "ISO 4217 currency code")
	cmd.Flags().String("reference", "", "merchant reference for the refund (random UUID when empty)")
	cmd.Flags().String("merchant-account", os.Getenv("CHECKOUT_MERCHANT_ACCOUNT"), "merchant account")
	cmd.MarkFlagRequired("psp-reference")
	cmd.MarkFlagRequired("amount")
	cmd.MarkFlagRequired("currency")

	return cmd
}

func detailsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "details",
		Short: "Submit the result of a redirect or native 3-D Secure step",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			redirectResult, _ := cmd.Flags().GetString("redirect-result")
			threeDSResult, _ := cmd.Flags().GetString("three-ds-result")
			if redirectResult == "" && threeDSResult == "" {
				return errors.New("one of --redirect-result or --three-ds-result is required")
			}

			gateway, err := newGateway(cmd)
			if err != nil {
				return err
			}

			var resp models.Response
			if redirectResult != "" {
				resp, err = gateway.SetRedirectResult(cmd.Context(), redirectResult)
			} else {
				resp, err = gateway.SetPaymentDetails(cmd.Context(), threeDSResult)
			}
			if err != nil {
				return describe(err)
			}

			encoded, err := models.EncodeResponse(resp)
			if err != nil {
				return err
			}
			return writeJSON(cmd, json.RawMessage(encoded))
		},
	}

	cmd.Flags().String("redirect-result", "", "redirectResult returned to the shopper's return URL")
	cmd.Flags().String("three-ds-result", "", "threeDSResult produced by the native 3-D Secure component")
	cmd.MarkFlagsMutuallyExclusive("redirect-result", "three-ds-result")

	return cmd
}

func newGateway(cmd *cobra.Command) (*checkout.Gateway, error) {
	config, err := checkout.ConfigFromEnv()
	if err != nil {
		return nil, err
	}
	return checkout.NewGateway(newLogger(cmd), config)
}

// describe adds a retry hint to failures the caller may safely repeat.
func describe(err error) error {
	var apiErr *checkout.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("processor rejected the request: %w", err)
	}
	if checkout.Retryable(err) {
		return fmt.Errorf("%w (retryable)", err)
	}
	return err
}

func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(args[0])
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
