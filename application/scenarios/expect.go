package scenarios

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"storefront_e2e/domain/entities"
)

// ExpectNotEmpty - fails unless n is positive
func ExpectNotEmpty(what string, n int) error {
	if n > 0 {
		return nil
	}
	return &entities.AssertionFailure{
		Expectation: what + " not empty",
		Expected:    "> 0",
		Actual:      n,
	}
}

// ExpectContains - fails unless text contains substr
func ExpectContains(what, text, substr string) error {
	if strings.Contains(text, substr) {
		return nil
	}
	return &entities.AssertionFailure{
		Expectation: fmt.Sprintf("%s contains %q", what, substr),
		Expected:    substr,
		Actual:      text,
	}
}

// ExpectAnyContainsFold - fails unless some value contains substr, ignoring case
func ExpectAnyContainsFold(what string, values []string, substr string) error {
	needle := strings.ToLower(substr)
	for _, v := range values {
		if strings.Contains(strings.ToLower(v), needle) {
			return nil
		}
	}
	return &entities.AssertionFailure{
		Expectation: fmt.Sprintf("some %s contains %q", what, substr),
		Expected:    substr,
		Actual:      values,
	}
}

// IsSortedDescending reports whether prices never increase
func IsSortedDescending(prices []float64) bool {
	return sort.SliceIsSorted(prices, func(i, j int) bool { return prices[i] > prices[j] })
}

// IsSortedAscending reports whether prices never decrease
func IsSortedAscending(prices []float64) bool {
	return sort.Float64sAreSorted(prices)
}

// ExpectSortedDescending - fails unless prices never increase
func ExpectSortedDescending(prices []float64) error {
	if IsSortedDescending(prices) {
		return nil
	}
	expected := append([]float64(nil), prices...)
	sort.Sort(sort.Reverse(sort.Float64Slice(expected)))
	return &entities.AssertionFailure{
		Expectation: "prices sorted descending",
		Expected:    expected,
		Actual:      prices,
	}
}

// ExpectSortedAscending - fails unless prices never decrease
func ExpectSortedAscending(prices []float64) error {
	if IsSortedAscending(prices) {
		return nil
	}
	expected := append([]float64(nil), prices...)
	sort.Float64s(expected)
	return &entities.AssertionFailure{
		Expectation: "prices sorted ascending",
		Expected:    expected,
		Actual:      prices,
	}
}

// ExpectApprox - fails unless |actual-expected| < tolerance
func ExpectApprox(what string, expected, actual, tolerance float64) error {
	if math.Abs(actual-expected) < tolerance {
		return nil
	}
	return &entities.AssertionFailure{
		Expectation: fmt.Sprintf("%s within %v", what, tolerance),
		Expected:    expected,
		Actual:      actual,
	}
}
