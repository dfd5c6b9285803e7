// Command agora runs the multi-agent discussion service.
package main
