/*
Package config holds the network controller channel configuration.

Configuration is read from a TOML or XML file, chosen by the file's
extension, and overlaid on Default. Only the settings present in the
file are changed.

A TOML file:

	bind_address = "127.0.0.1"
	bind_port = 50002
	log_level = "debug"
	strict_logic = true

The same settings in XML:

	<netctrl>
	  <bind>
	    <address>127.0.0.1</address>
	    <port>50002</port>
	  </bind>
	  <log>
	    <level>debug</level>
	  </log>
	  <session>
	    <strict-logic>true</strict-logic>
	  </session>
	</netctrl>

The bind port may be given as an integer or a decimal string.
*/
package config
