// Package main 提供食譜資料前處理的命令列工具
//
// 用法：
//
//	prep directions --in course.csv --out course_processed.csv
//	prep classify --in course_processed.csv --out course_classification.csv
package main

func main() {
	Execute()
}
