// Command lapsis fits a dose-response posterior by Laplace approximation,
// corrects the approximation with Pareto smoothed importance sampling, and
// reports the k-hat reliability diagnostic alongside the estimates.
package main

func main() {
	Execute()
}
