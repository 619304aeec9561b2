// Command propjson decodes, inspects and re-encodes JSON documents against
// the registered catalog types.
package main

import "github.com/sarchlab/propjson/propjson/cmd"

func main() {
	cmd.Execute()
}
