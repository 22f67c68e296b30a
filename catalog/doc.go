// Package catalog holds the product domain of the query layer: products and categories,
// listing parameters and their canonical keys, the sort engine, page slicing, the URL
// query string codec, the error kinds reported by data sources and the source ports.
//
// Everything here is pure; state lives in package catalogcache.
package catalog
