package models

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// SubmissionFields is the flat wire and storage form of every type-specific answer.
type SubmissionFields struct {
	Age                *string `db:"age" json:"age,omitempty" owner:"application"`
	Education          *string `db:"education" json:"education,omitempty" owner:"application"`
	Field              *string `db:"field" json:"field,omitempty" owner:"application"`
	BusinessExperience *string `db:"business_experience" json:"businessExperience,omitempty" owner:"application"`
	BusinessTracks     *string `db:"business_tracks" json:"businessTracks,omitempty" owner:"application"`
	BusinessIdea       *string `db:"business_idea" json:"businessIdea,omitempty" owner:"application"`
	Motivation         *string `db:"motivation" json:"motivation,omitempty" owner:"application"`
	TotalExperience    *string `db:"total_experience" json:"totalExperience,omitempty" owner:"application"`
	CurrentSalary      *string `db:"current_salary" json:"currentSalary,omitempty" owner:"application"`
	RelevantExperience *string `db:"relevant_experience" json:"relevantExperience,omitempty" owner:"application"`
	WhyJoin            *string `db:"why_join" json:"whyJoin,omitempty" owner:"application"`
	AvailabilityDate   *string `db:"availability_date" json:"availabilityDate,omitempty" owner:"application"`

	ReservationReason  *string `db:"reservation_reason" json:"reservationReason,omitempty" owner:"reservation"`
	PreferredStartDate *string `db:"preferred_start_date" json:"preferredStartDate,omitempty" owner:"reservation"`

	EnquiryType    *string `db:"enquiry_type" json:"enquiryType,omitempty" owner:"enquiry"`
	EnquiryMessage *string `db:"enquiry_message" json:"enquiryMessage,omitempty" owner:"enquiry"`

	InterestType    *string `db:"interest_type" json:"interestType,omitempty" owner:"interest"`
	InterestMessage *string `db:"interest_message" json:"interestMessage,omitempty" owner:"interest"`

	PaymentFor     *string `db:"payment_for" json:"paymentFor,omitempty" owner:"payment-inquiry"`
	PaymentMethod  *string `db:"payment_method" json:"paymentMethod,omitempty" owner:"payment-inquiry"`
	PaymentMessage *string `db:"payment_message" json:"paymentMessage,omitempty" owner:"payment-inquiry"`

	InternationalExperience *string `db:"international_experience" json:"internationalExperience,omitempty" owner:"*"`
	LanguageSkills          *string `db:"language_skills" json:"languageSkills,omitempty" owner:"*"`
	Newsletter              *string `db:"newsletter" json:"newsletter,omitempty" owner:"*"`
}

// Details returns the variant for t. Answers owned by other types are left
// out of the view but stay on f.
func (f SubmissionFields) Details(t SubmissionType) (SubmissionDetails, error) {
	shared := SharedDetails{
		InternationalExperience: f.InternationalExperience,
		LanguageSkills:          f.LanguageSkills,
		Newsletter:              f.Newsletter,
	}

	switch t {
	case SubmissionTypeApplication:
		return ApplicationDetails{
			SharedDetails:      shared,
			Age:                f.Age,
			Education:          f.Education,
			Field:              f.Field,
			BusinessExperience: f.BusinessExperience,
			BusinessTracks:     f.BusinessTracks,
			BusinessIdea:       f.BusinessIdea,
			Motivation:         f.Motivation,
			TotalExperience:    f.TotalExperience,
			CurrentSalary:      f.CurrentSalary,
			RelevantExperience: f.RelevantExperience,
			WhyJoin:            f.WhyJoin,
			AvailabilityDate:   f.AvailabilityDate,
		}, nil
	case SubmissionTypeReservation:
		return ReservationDetails{SharedDetails: shared, ReservationReason: f.ReservationReason, PreferredStartDate: f.PreferredStartDate}, nil
	case SubmissionTypeEnquiry:
		return EnquiryDetails{SharedDetails: shared, EnquiryType: f.EnquiryType, EnquiryMessage: f.EnquiryMessage}, nil
	case SubmissionTypeInterest:
		return InterestDetails{SharedDetails: shared, InterestType: f.InterestType, InterestMessage: f.InterestMessage}, nil
	case SubmissionTypePaymentInquiry:
		return PaymentInquiryDetails{SharedDetails: shared, PaymentFor: f.PaymentFor, PaymentMethod: f.PaymentMethod, PaymentMessage: f.PaymentMessage}, nil
	default:
		return nil, fmt.Errorf("unknown submission type %q", t)
	}
}

// ForeignTo lists, by JSON name, the answers that other submission types own.
func (f SubmissionFields) ForeignTo(t SubmissionType) []string {
	var foreign []string
	v := reflect.ValueOf(f)
	typ := v.Type()
	for i := 0; i < typ.NumField(); i++ {
		if v.Field(i).IsNil() {
			continue
		}
		owner := typ.Field(i).Tag.Get("owner")
		if owner == "*" || owner == string(t) {
			continue
		}
		name, _, _ := strings.Cut(typ.Field(i).Tag.Get("json"), ",")
		foreign = append(foreign, name)
	}
	sort.Strings(foreign)
	return foreign
}

// SubmissionDetails is the typed set of answers for one submission type.
type SubmissionDetails interface {
	Kind() SubmissionType
	Fields() SubmissionFields
}

// SharedDetails are optional answers every form may carry.
type SharedDetails struct {
	InternationalExperience *string
	LanguageSkills          *string
	Newsletter              *string
}

func (s SharedDetails) fields() SubmissionFields {
	return SubmissionFields{
		InternationalExperience: s.InternationalExperience,
		LanguageSkills:          s.LanguageSkills,
		Newsletter:              s.Newsletter,
	}
}

// ApplicationDetails covers program and job applications.
type ApplicationDetails struct {
	SharedDetails
	Age                *string
	Education          *string
	Field              *string
	BusinessExperience *string
	BusinessTracks     *string
	BusinessIdea       *string
	Motivation         *string
	TotalExperience    *string
	CurrentSalary      *string
	RelevantExperience *string
	WhyJoin            *string
	AvailabilityDate   *string
}

func (ApplicationDetails) Kind() SubmissionType { return SubmissionTypeApplication }

func (d ApplicationDetails) Fields() SubmissionFields {
	f := d.SharedDetails.fields()
	f.Age = d.Age
	f.Education = d.Education
	f.Field = d.Field
	f.BusinessExperience = d.BusinessExperience
	f.BusinessTracks = d.BusinessTracks
	f.BusinessIdea = d.BusinessIdea
	f.Motivation = d.Motivation
	f.TotalExperience = d.TotalExperience
	f.CurrentSalary = d.CurrentSalary
	f.RelevantExperience = d.RelevantExperience
	f.WhyJoin = d.WhyJoin
	f.AvailabilityDate = d.AvailabilityDate
	return f
}

type ReservationDetails struct {
	SharedDetails
	ReservationReason  *string
	PreferredStartDate *string
}

func (ReservationDetails) Kind() SubmissionType { return SubmissionTypeReservation }

func (d ReservationDetails) Fields() SubmissionFields {
	f := d.SharedDetails.fields()
	f.ReservationReason = d.ReservationReason
	f.PreferredStartDate = d.PreferredStartDate
	return f
}

type EnquiryDetails struct {
	SharedDetails
	EnquiryType    *string
	EnquiryMessage *string
}

func (EnquiryDetails) Kind() SubmissionType { return SubmissionTypeEnquiry }

func (d EnquiryDetails) Fields() SubmissionFields {
	f := d.SharedDetails.fields()
	f.EnquiryType = d.EnquiryType
	f.EnquiryMessage = d.EnquiryMessage
	return f
}

type InterestDetails struct {
	SharedDetails
	InterestType    *string
	InterestMessage *string
}

func (InterestDetails) Kind() SubmissionType { return SubmissionTypeInterest }

func (d InterestDetails) Fields() SubmissionFields {
	f := d.SharedDetails.fields()
	f.InterestType = d.InterestType
	f.InterestMessage = d.InterestMessage
	return f
}

type PaymentInquiryDetails struct {
	SharedDetails
	PaymentFor     *string
	PaymentMethod  *string
	PaymentMessage *string
}

func (PaymentInquiryDetails) Kind() SubmissionType { return SubmissionTypePaymentInquiry }

func (d PaymentInquiryDetails) Fields() SubmissionFields {
	f := d.SharedDetails.fields()
	f.PaymentFor = d.PaymentFor
	f.PaymentMethod = d.PaymentMethod
	f.PaymentMessage = d.PaymentMessage
	return f
}
