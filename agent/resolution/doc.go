// Package resolution settles detected conflicts before consensus is
// built.
//
// Each conflict is classified by its severity (the confidence gap) and
// that level picks the strategy: low-severity disagreements merge both
// answers, medium ones keep the higher-confidence answer, high ones go
// to a mediator worker when one is registered. A conflict the chosen
// strategy cannot settle within the attempt budget is escalated:
// flagged and carried into the output rather than blocking synthesis.
package resolution
