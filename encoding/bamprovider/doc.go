// Package bamprovider reads SAM and BAM files record by record, in the
// order the records are stored.
//
// The Provider is an interface over one input file; NewProvider picks the
// reader from the file name. SAM files may be compressed.
//
// NameIterator is implemented on top of Iterator to keep only the first
// record of each read name, and Writer writes records back out in either
// format.
package bamprovider
