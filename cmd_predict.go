package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	qhttp "smartfarm/http"
	"smartfarm/recommend"
)

func newPredictCmd(a *app, name string) *cobra.Command {
	flow := recommend.Flow(name)
	fields := recommend.FieldsFor(flow)
	prefix := fieldPrefix(fields)

	var asJSON bool
	cmd := &cobra.Command{
		Use:   name,
		Short: fmt.Sprintf("Run one %s recommendation from flags", name),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			values := make(map[string]float64)
			for _, f := range fields {
				flag := strings.TrimPrefix(f.Key, prefix)
				if cmd.Flags().Changed(flag) {
					v, err := cmd.Flags().GetFloat64(flag)
					if err != nil {
						return err
					}
					values[f.Key] = v
				}
			}

			models, err := a.loadModels(cmd.Context())
			if err != nil {
				return err
			}
			res, err := recommend.New(models, recommend.WithLogger(a.logger)).Run(flow, values)
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), res, asJSON)
		},
	}
	for _, f := range fields {
		cmd.Flags().Float64(strings.TrimPrefix(f.Key, prefix), f.Default, f.Label)
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the JSON API response")
	return cmd
}

func printResult(w io.Writer, res recommend.Result, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(qhttp.NewPredictionResponse(res))
	}
	if _, ok := res.(recommend.Recommended); ok {
		_, err := fmt.Fprintln(w, "✅ "+recommend.Message(res))
		return err
	}
	_, err := fmt.Fprintln(w, recommend.Message(res))
	return err
}

// fieldPrefix is the "crop_"/"fert_" prefix shared by a flow's field keys.
func fieldPrefix(fields []recommend.Field) string {
	if len(fields) == 0 {
		return ""
	}
	if i := strings.Index(fields[0].Key, "_"); i >= 0 {
		return fields[0].Key[:i+1]
	}
	return ""
}

// askFunc matches survey.AskOne so prompts can be scripted in tests.
type askFunc func(p survey.Prompt, response interface{}, opts ...survey.AskOpt) error

var tabOptions = []string{"Crop Prediction", "Fertilizer Recommendation", "Quit"}

func newInteractiveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "interactive",
		Short: "Prompt for measurements in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			models, err := a.loadModels(cmd.Context())
			if err != nil {
				return err
			}
			rec := recommend.New(models, recommend.WithLogger(a.logger))
			return runInteractive(cmd.OutOrStdout(), rec, survey.AskOne)
		},
	}
}

func runInteractive(w io.Writer, rec *recommend.Recommender, ask askFunc) error {
	for {
		var tab string
		if err := ask(&survey.Select{Message: "Choose a tool:", Options: tabOptions}, &tab); err != nil {
			return err
		}

		var flow recommend.Flow
		switch tab {
		case tabOptions[0]:
			flow = recommend.FlowCrop
		case tabOptions[1]:
			flow = recommend.FlowFertilizer
		default:
			return nil
		}

		values, err := askFields(recommend.FieldsFor(flow), ask)
		if err != nil {
			return err
		}
		res, err := rec.Run(flow, values)
		if err != nil {
			fmt.Fprintln(w, err)
			continue
		}
		if err := printResult(w, res, false); err != nil {
			return err
		}
	}
}

func askFields(fields []recommend.Field, ask askFunc) (map[string]float64, error) {
	values := make(map[string]float64, len(fields))
	for _, f := range fields {
		f := f
		var answer string
		prompt := &survey.Input{
			Message: f.Label + ":",
			Default: strconv.FormatFloat(f.Default, 'f', -1, 64),
		}
		if f.Bounded {
			lo, hi := f.Range()
			prompt.Help = fmt.Sprintf("Range %g – %g", lo, hi)
		}
		validate := survey.WithValidator(func(ans interface{}) error {
			v, err := strconv.ParseFloat(strings.TrimSpace(fmt.Sprint(ans)), 64)
			if err != nil {
				return errors.New("must be a number")
			}
			return f.Check(v)
		})
		if err := ask(prompt, &answer, validate); err != nil {
			return nil, err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(answer), 64)
		if err != nil {
			return nil, fmt.Errorf("%s: must be a number", f.Key)
		}
		values[f.Key] = v
	}
	return values, nil
}
