package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Program is an offering that applications and reservations can target.
type Program struct {
	Code          string `json:"code"`
	Name          string `json:"name"`
	DurationYears int    `json:"durationYears"`
	PaidYears     int    `json:"paidYears"`
	AgeRange      string `json:"ageRange"`
	Flagship      bool   `json:"flagship"`
}

// FlagshipProgramCode is used whenever a program code is not in the catalog.
const FlagshipProgramCode = "GEEP"

var programCatalog = []Program{
	{Code: "GEEP", Name: "Global Entrepreneurship Excellence Program", DurationYears: 7, PaidYears: 2, AgeRange: "15-22", Flagship: true},
	{Code: "IEEP", Name: "International Executive Entrepreneurship Program", DurationYears: 5, PaidYears: 2, AgeRange: "22-26"},
	{Code: "GBLP", Name: "Global Business Leadership Program", DurationYears: 4, PaidYears: 2, AgeRange: "22-45"},
	{Code: "EIP", Name: "Entrepreneurship Immersion Program", DurationYears: 3, PaidYears: 1, AgeRange: "18-30"},
	{Code: "ERBP", Name: "Entrepreneurial Residency & Business Program", DurationYears: 6, PaidYears: 3, AgeRange: "16-35"},
}

// Programs returns the catalog in display order.
func Programs() []Program {
	out := make([]Program, len(programCatalog))
	copy(out, programCatalog)
	return out
}

// LookupProgram finds a program by code, case-insensitively. Values such as
// "GEEP - Global Entrepreneurship Excellence Program" match on the code prefix.
func LookupProgram(codeOrLabel string) (Program, bool) {
	code := strings.TrimSpace(codeOrLabel)
	if head, _, found := strings.Cut(code, " - "); found {
		code = head
	}
	for _, p := range programCatalog {
		if strings.EqualFold(p.Code, code) {
			return p, true
		}
	}
	return Program{}, false
}

// FreeYears is the number of tuition-free years after the paid period.
func (p Program) FreeYears() int {
	return p.DurationYears - p.PaidYears
}

var (
	admissionFee = decimal.NewFromInt(10000)
	monthlyFee   = decimal.NewFromInt(1000)
)

// FeeSchedule is the published fee structure for one program.
type FeeSchedule struct {
	Program      Program         `json:"program"`
	AdmissionFee decimal.Decimal `json:"admissionFee"`
	MonthlyFee   decimal.Decimal `json:"monthlyFee"`
	PaidMonths   int             `json:"paidMonths"`
}

// Tuition is the monthly fee over the paid period.
func (f FeeSchedule) Tuition() decimal.Decimal {
	return f.MonthlyFee.Mul(decimal.NewFromInt(int64(f.PaidMonths)))
}

// Total is admission plus tuition.
func (f FeeSchedule) Total() decimal.Decimal {
	return f.AdmissionFee.Add(f.Tuition())
}

// FeeScheduleFor returns the schedule for code, falling back to the flagship
// program when the code is not recognised.
func FeeScheduleFor(code string) FeeSchedule {
	program, ok := LookupProgram(code)
	if !ok {
		program, _ = LookupProgram(FlagshipProgramCode)
	}
	return FeeSchedule{
		Program:      program,
		AdmissionFee: admissionFee,
		MonthlyFee:   monthlyFee,
		PaidMonths:   program.PaidYears * 12,
	}
}
