package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JakeFAU/vera-landing/internal/lead"
)

type sendOptions struct {
	name          string
	phone         string
	email         string
	contactMethod string
	pageURL       string
	message       string
	utm           lead.UTM
}

func newSendCmd() *cobra.Command {
	var opts sendOptions

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Dispatch one lead through the configured channels",
		Long: `send builds a lead from flags and tries the channels listed in
dispatch.channels in order. It exits non-zero when none accepted the lead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSend(cmd.Context(), cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.name, "name", "", "contact name (required)")
	f.StringVar(&opts.phone, "phone", "", "contact phone (required)")
	f.StringVar(&opts.email, "email", "", "contact email")
	f.StringVar(&opts.contactMethod, "contact-method", "", "preferred contact method (default \""+lead.DefaultContactMethod+"\")")
	f.StringVar(&opts.pageURL, "page-url", "", "page the lead came from")
	f.StringVar(&opts.message, "message", "", "free-form message")
	f.StringVar(&opts.utm.Source, "utm-source", "", "utm_source tag")
	f.StringVar(&opts.utm.Medium, "utm-medium", "", "utm_medium tag")
	f.StringVar(&opts.utm.Campaign, "utm-campaign", "", "utm_campaign tag")
	f.StringVar(&opts.utm.Term, "utm-term", "", "utm_term tag")
	f.StringVar(&opts.utm.Content, "utm-content", "", "utm_content tag")
	return cmd
}

func (o sendOptions) raw() lead.Raw {
	raw := lead.Raw{
		"name":  o.name,
		"phone": o.phone,
		"email": o.email,
	}
	optional := map[string]string{
		"contactMethod": o.contactMethod,
		"pageUrl":       o.pageURL,
		"message":       o.message,
	}
	for _, pair := range o.utm.Pairs() {
		optional[pair[0]] = pair[1]
	}
	// Unset flags stay absent so the page query can still supply attribution.
	for key, value := range optional {
		if value != "" {
			raw[key] = value
		}
	}
	return raw
}

func runSend(ctx context.Context, cmd *cobra.Command, opts sendOptions) error {
	cfg, err := configFrom(ctx)
	if err != nil {
		return err
	}
	app, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = app.Close(context.Background()) }()

	res := app.Dispatcher().Dispatch(ctx, opts.raw())
	if !res.OK {
		if errors.Is(res.Err, lead.ErrValidation) {
			return res.Err
		}
		return fmt.Errorf("%s: %w", res.Message, res.Err)
	}

	channel := "none"
	if n := len(res.Attempts); n > 0 {
		channel = res.Attempts[n-1].Channel
	}
	fmt.Fprintf(cmd.OutOrStdout(), "lead %s delivered via %s\n", res.SubmissionID, channel)
	return nil
}
