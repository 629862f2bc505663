package simulations_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestSimulations(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Simulations Suite")
}
