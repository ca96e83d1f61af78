package main

import (
	"context"
)

// repairCourses normalizes the content tree of every course and prints
// what changed. One broken course does not stop the rest.
func (cli *commandLine) repairCourses() error {
	results, err := cli.crsSvc.RepairAll(context.Background())
	if err != nil {
		return err
	}

	var changed, failed int
	for _, res := range results {
		switch {
		case res.Error != "":
			failed++
			logger.Printf("course %s: FAILED: %s", res.CourseID, res.Error)
		case res.Report.Changed:
			changed++
			logger.Printf("course %s: repaired (default category: %t, placeholder categories: %d, placeholder subcategories: %d)",
				res.CourseID, res.Report.DefaultCategoryAdded, res.Report.PlaceholderCategories, res.Report.PlaceholderSubcategories)
		}
	}
	logger.Printf("%d courses checked, %d repaired, %d failed", len(results), changed, failed)
	return nil
}
