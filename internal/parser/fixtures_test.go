// Package parser turns crash report text into structured facts. It handles the
// fixed header, the main stack trace, the mod state table and the environment
// markers that tell client and server reports apart.
package parser

const sampleReport = "---- Minecraft Crash Report ----\n" +
	"// Quite honestly, I wouldn't worry myself about that.\n" +
	"\n" +
	"Time: 1/2/24 3:04 PM\n" +
	"Description: Unexpected error\n" +
	"\n" +
	"java.lang.NullPointerException: Unexpected error\n" +
	"\tat net.minecraft.client.Minecraft.func_71407_l(Minecraft.java:1234)\n" +
	"\tat net.minecraft.client.Minecraft.func_71411_J(Minecraft.java:962)\n" +
	"\n" +
	"A detailed walkthrough of the error, its code path and all known details is as follows:\n" +
	"---------------------------------------------------------------------------------------\n" +
	"\n" +
	"-- System Details --\n" +
	"Details:\n" +
	"\tMinecraft Version: 1.7.10\n" +
	"\tJava Version: 1.8.0_311, Oracle Corporation\n" +
	"\tFML: MCP v9.05 FML v7.10.99.99 Minecraft Forge 10.13.4.1614 7 mods loaded, 7 mods active\n" +
	"\tStates: 'U' = Unloaded 'L' = Loaded 'C' = Constructed 'H' = Pre-initialized 'I' = Initialized 'J' = Post-initialized 'A' = Available 'D' = Disabled 'E' = Errored\n" +
	"\tUCHIJAAAA\tmcp{9.05} [Minecraft Coder Pack] (minecraft.jar) \n" +
	"\tUCHIJAAAA\tFML{7.10.99.99} [Forge Mod Loader] (forge-1.7.10.jar) \n" +
	"\tUCHIJAAAA\tForge{10.13.4.1614} [Minecraft Forge] (forge-1.7.10.jar) \n" +
	"\tUCHIJAAAA\tCodeChickenCore{1.2.3} [CodeChicken Core] (minecraft.jar) \n" +
	"\tUCHIJAAAA\tNotEnoughItems{2.5.4-GTNH} [NotEnoughItems] (NotEnoughItems-2.5.4-GTNH.jar) \n" +
	"\tUCHIJAAAE\tangelica{1.0.0} [Angelica] (angelica-1.0.0.jar) \n" +
	"\tUD\tticker{1.0} [Ticker] (ticker-1.0.jar) \n" +
	"\tGL info: ' Vendor: 'NVIDIA Corporation' Version: '4.6.0'\n" +
	"\tUCHIJAAAA\tlate{1.0} [Late] (late.jar) \n" +
	"\tType: Client (map_client.txt)\n" +
	"\tIs Modded: Definitely; Client brand changed to 'fml,forge'\n"
