//go:build e2e
// +build e2e

/*
Copyright 2025.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package e2e

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/dab-demo/dab-demo/test/utils"
)

// namespace the shared config is published to when a cluster is reachable
const namespace = "dab-demo-e2e"

// dabdemo runs the CLI with logging limited to errors, so output is what the command printed.
func dabdemo(args ...string) (string, error) {
	return utils.Run(exec.Command(binary, append([]string{"--log-format", "json", "--log-level", "error"}, args...)...))
}

var _ = Describe("dabdemo", Ordered, func() {
	Context("with the shipped project", func() {
		It("should resolve the project directories", func() {
			output, err := dabdemo("paths")
			Expect(err).NotTo(HaveOccurred())

			lines := utils.GetNonEmptyLines(output)
			Expect(lines).To(HaveLen(6))
			Expect(output).To(ContainSubstring(filepath.Join("dab_demo", "resources")))
			Expect(output).To(ContainSubstring(filepath.Join("common_framework", "config")))
		})

		It("should validate the shared config", func() {
			output, err := dabdemo("validate")
			Expect(err).NotTo(HaveOccurred(), output)
			Expect(output).To(HavePrefix("OK "))
		})

		It("should read foo_test from bar.yml", func() {
			output, err := dabdemo("parse-bar")
			Expect(err).NotTo(HaveOccurred())
			Expect(output).To(ContainSubstring("foo_test: zoo"))
		})

		It("should print bundle variables", func() {
			output, err := dabdemo("vars")
			Expect(err).NotTo(HaveOccurred())
			Expect(output).To(ContainSubstring("--var catalog=samples"))
			Expect(output).To(ContainSubstring("--var schema=nyctaxi"))
		})

		It("should count more than five sample trips", func() {
			output, err := dabdemo("count", "samples.nyctaxi.trips")
			Expect(err).NotTo(HaveOccurred())

			var n int
			_, err = fmt.Sscanf(strings.TrimSpace(output), "%d", &n)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(BeNumerically(">", 5))
		})

		It("should render the shared config ConfigMap", func() {
			output, err := dabdemo("configmap", "--namespace", namespace)
			Expect(err).NotTo(HaveOccurred())
			Expect(output).To(ContainSubstring("kind: ConfigMap"))
			Expect(output).To(ContainSubstring("namespace: " + namespace))
		})
	})

	Context("with a broken project", func() {
		var root string

		BeforeAll(func() {
			dir, err := os.MkdirTemp("", "dabdemo-broken")
			Expect(err).NotTo(HaveOccurred())
			DeferCleanup(os.RemoveAll, dir)

			root = filepath.Join(dir, "dab_demo")
			shared := filepath.Join(dir, "common_framework", "config")
			Expect(os.MkdirAll(shared, 0755)).To(Succeed())
			Expect(os.WriteFile(filepath.Join(shared, "bar.yml"), []byte("bar_test:\n  foo_test: nope\n"), 0644)).To(Succeed())
			Expect(os.WriteFile(filepath.Join(shared, "data.json"), []byte(""), 0644)).To(Succeed())
		})

		It("should report every failed file and exit non-zero", func() {
			output, err := dabdemo("validate", "--project-root", root)
			Expect(err).To(HaveOccurred())
			Expect(output).To(ContainSubstring("foo_test-value"))
			Expect(output).To(ContainSubstring("not-empty"))
		})

		It("should refuse to render an invalid ConfigMap", func() {
			_, err := dabdemo("configmap", "--project-root", root)
			Expect(err).To(HaveOccurred())
		})
	})

	Context("with a cluster", func() {
		BeforeAll(func() {
			if _, err := utils.Run(exec.Command("kubectl", "cluster-info")); err != nil {
				Skip("no reachable cluster")
			}

			By("creating the namespace")
			_, _ = utils.Run(exec.Command("kubectl", "create", "ns", namespace))
		})

		AfterAll(func() {
			By("deleting the namespace")
			_, _ = utils.Run(exec.Command("kubectl", "delete", "ns", namespace, "--ignore-not-found"))
		})

		It("should publish the shared config idempotently", func() {
			output, err := dabdemo("publish", "--namespace", namespace)
			Expect(err).NotTo(HaveOccurred(), output)
			Expect(output).To(MatchRegexp(`configmap/common-framework-config (created|updated|unchanged)`))

			Eventually(func(g Gomega) {
				out, err := utils.Run(exec.Command("kubectl", "get", "configmap", "common-framework-config",
					"-n", namespace, "-o", "jsonpath={.data.bar\\.yml}"))
				g.Expect(err).NotTo(HaveOccurred())
				g.Expect(out).To(ContainSubstring("foo_test: zoo"))
			}, time.Minute, time.Second).Should(Succeed())

			output, err = dabdemo("publish", "--namespace", namespace)
			Expect(err).NotTo(HaveOccurred())
			Expect(output).To(ContainSubstring("unchanged"))
		})
	})
})
