// Package catalog turns afdian listing responses into the work list of an
// export run, and discovers which albums a creator publishes into.
package catalog
