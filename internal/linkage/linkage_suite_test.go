package linkage_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestLinkage(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Linkage Suite")
}
