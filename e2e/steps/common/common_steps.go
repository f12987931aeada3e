// Package common holds the request and assertion steps shared by every
// feature.
package common

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	AuthenticateAs(role, subjectClaim string) error
	ClearAuth()
	GET(path string) error
	POST(path string, body any) error
	Status() int
	Body() []byte
	Header(k string) string
	Field(path string) (any, error)
	Remember(name, value string)
	Expand(s string) string
}

// RegisterSteps registers generic request and assertion steps
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &commonSteps{tc: tc}

	ctx.Step(`^I am an officer with id "([^"]*)"$`, steps.asOfficer)
	ctx.Step(`^I am a civilian with identity code "([^"]*)"$`, steps.asCivilian)
	ctx.Step(`^I am an administrator$`, steps.asAdmin)
	ctx.Step(`^I am not authenticated$`, steps.anonymous)

	ctx.Step(`^I GET "([^"]*)"$`, steps.get)
	ctx.Step(`^the response status should be (\d+)$`, steps.statusShouldBe)
	ctx.Step(`^the response field "([^"]*)" should be "([^"]*)"$`, steps.fieldShouldBe)
	ctx.Step(`^the response field "([^"]*)" should be (\d+)$`, steps.fieldShouldBeNumber)
	ctx.Step(`^the response field "([^"]*)" should not be empty$`, steps.fieldShouldNotBeEmpty)
	ctx.Step(`^the response list "([^"]*)" should have (\d+) items?$`, steps.listShouldHaveItems)
	ctx.Step(`^the response header "([^"]*)" should contain "([^"]*)"$`, steps.headerShouldContain)
	ctx.Step(`^I remember the response field "([^"]*)" as "([^"]*)"$`, steps.remember)
}

type commonSteps struct {
	tc TestContext
}

func (s *commonSteps) asOfficer(_ context.Context, officerID string) error {
	return s.tc.AuthenticateAs("officer", officerID)
}

func (s *commonSteps) asCivilian(_ context.Context, code string) error {
	return s.tc.AuthenticateAs("civilian", code)
}

func (s *commonSteps) asAdmin(context.Context) error {
	return s.tc.AuthenticateAs("admin", "")
}

func (s *commonSteps) anonymous(context.Context) error {
	s.tc.ClearAuth()
	return nil
}

func (s *commonSteps) get(_ context.Context, path string) error {
	return s.tc.GET(s.tc.Expand(path))
}

func (s *commonSteps) statusShouldBe(_ context.Context, want int) error {
	if got := s.tc.Status(); got != want {
		return fmt.Errorf("expected status %d, got %d: %s", want, got, s.tc.Body())
	}
	return nil
}

func (s *commonSteps) fieldShouldBe(_ context.Context, path, want string) error {
	v, err := s.tc.Field(path)
	if err != nil {
		return err
	}
	if got := fmt.Sprint(v); got != s.tc.Expand(want) {
		return fmt.Errorf("expected %s to be %q, got %q", path, want, got)
	}
	return nil
}

func (s *commonSteps) fieldShouldBeNumber(_ context.Context, path string, want int) error {
	v, err := s.tc.Field(path)
	if err != nil {
		return err
	}
	n, ok := v.(float64)
	if !ok {
		return fmt.Errorf("expected %s to be a number, got %T", path, v)
	}
	if int(n) != want {
		return fmt.Errorf("expected %s to be %d, got %s", path, want, strconv.FormatFloat(n, 'f', -1, 64))
	}
	return nil
}

func (s *commonSteps) fieldShouldNotBeEmpty(_ context.Context, path string) error {
	v, err := s.tc.Field(path)
	if err != nil {
		return err
	}
	if v == nil || fmt.Sprint(v) == "" {
		return fmt.Errorf("expected %s to be set", path)
	}
	return nil
}

func (s *commonSteps) listShouldHaveItems(_ context.Context, path string, want int) error {
	v, err := s.tc.Field(path)
	if err != nil {
		return err
	}
	list, ok := v.([]any)
	if !ok {
		return fmt.Errorf("expected %s to be a list, got %T", path, v)
	}
	if len(list) != want {
		return fmt.Errorf("expected %d items in %s, got %d", want, path, len(list))
	}
	return nil
}

func (s *commonSteps) headerShouldContain(_ context.Context, name, want string) error {
	if got := s.tc.Header(name); !strings.Contains(got, want) {
		return fmt.Errorf("expected header %s to contain %q, got %q", name, want, got)
	}
	return nil
}

func (s *commonSteps) remember(_ context.Context, path, name string) error {
	v, err := s.tc.Field(path)
	if err != nil {
		return err
	}
	s.tc.Remember(name, fmt.Sprint(v))
	return nil
}
