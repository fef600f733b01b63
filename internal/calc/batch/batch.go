package batch

import (
	"fmt"

	shell "OilPro/internal/calc/shell"
)

type ShellBatchInput struct {
	Items []shell.Input `json:"items"`
}

type ShellBatchResult struct {
	Results []shell.Result `json:"results"`
}

func CalculateShell(in ShellBatchInput) (ShellBatchResult, error) {
	if len(in.Items) == 0 {
		return ShellBatchResult{}, fmt.Errorf("no items")
	}
	out := ShellBatchResult{Results: make([]shell.Result, 0, len(in.Items))}
	for _, item := range in.Items {
		res, err := shell.Calculate(item)
		if err != nil {
			return ShellBatchResult{}, err
		}
		out.Results = append(out.Results, res)
	}
	return out, nil
}
