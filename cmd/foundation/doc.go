// Package main is the foundation command line client.
//
// Usage:
//
//	foundation get https://api.example.com/items -q page=2
//	foundation post https://api.example.com/login -f user=a -f pass=b
//	foundation json https://api.example.com/items -d '{"name":"widget"}'
//	foundation upload https://api.example.com/files -F doc=report.pdf -F 'img[]=a.png'
//
// Configuration comes from FOUNDATION_* environment variables or a YAML/TOML
// file passed with --config. --debug logs each request and response.
package main
