// Package generic holds the pieces every site adapter shares: a page
// fetcher for secondary pages and tiered extraction strategies that pull
// a cover image and a genre list out of a novel's landing page.
package generic
